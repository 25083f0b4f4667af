package service

import (
	"math"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

type tierBand struct {
	tier           models.AchievementTier
	minimum        int
	description    string
	recommendation string
}

// achievementBands is ordered by descending minimum; the last band has minimum 0.
var achievementBands = []tierBand{
	{
		tier:           models.TierDistinction,
		minimum:        250,
		description:    "Outstanding engagement across the whole Transition Year programme.",
		recommendation: "Consider mentoring peers or leading a school project next year.",
	},
	{
		tier:           models.TierMerit,
		minimum:        200,
		description:    "Strong, consistent participation in most programme areas.",
		recommendation: "A further portfolio review or short course would reach Distinction.",
	},
	{
		tier:           models.TierPass,
		minimum:        150,
		description:    "Satisfactory completion of the core programme.",
		recommendation: "Build credits through optional subjects and work experience.",
	},
	{
		tier:           models.TierParticipation,
		minimum:        100,
		description:    "Participated in parts of the programme.",
		recommendation: "Agree a credit plan with the year head to reach Pass.",
	},
	{
		tier:           models.TierIncomplete,
		minimum:        0,
		description:    "Not enough credits recorded to certify the year.",
		recommendation: "Review attendance and outstanding work with the coordinator.",
	},
}

// Classify maps a credit total to the highest tier whose minimum it reaches.
// Negative totals are Incomplete.
func Classify(total int) models.Achievement {
	for _, band := range achievementBands {
		if total >= band.minimum {
			return band.achievement()
		}
	}
	return achievementBands[len(achievementBands)-1].achievement()
}

// TierThreshold returns the minimum credits for tier. Unknown tiers fall back to Merit.
func TierThreshold(tier models.AchievementTier) int {
	for _, band := range achievementBands {
		if band.tier == tier {
			return band.minimum
		}
	}
	return TierThreshold(models.TierMerit)
}

// ProgressPercentage reports progress of total toward target as 0..100.
func ProgressPercentage(total int, target models.AchievementTier) int {
	threshold := TierThreshold(target)
	if threshold <= 0 {
		return 100
	}
	pct := int(math.Round(100 * float64(total) / float64(threshold)))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func (b tierBand) achievement() models.Achievement {
	return models.Achievement{
		Tier:           b.tier,
		MinimumCredits: b.minimum,
		Description:    b.description,
		Recommendation: b.recommendation,
	}
}
