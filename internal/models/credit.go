package models

// CreditSource names a table that contributes credits to a student's total.
type CreditSource string

const (
	CreditSourceSubjects       CreditSource = "subjects"
	CreditSourceWorkExperience CreditSource = "workExperience"
	CreditSourcePortfolio      CreditSource = "portfolio"
	CreditSourceAttendance     CreditSource = "attendance"
)

// Write-time bounds for credit rows.
const (
	MaxAttendanceCredits     = 10
	MaxWorkExperienceCredits = 20
	MaxPortfolioCredits      = 50
)

// CreditBreakdown is a student's credits split by source.
type CreditBreakdown struct {
	Subjects       int `json:"subjects"`
	WorkExperience int `json:"workExperience"`
	Portfolio      int `json:"portfolio"`
	Attendance     int `json:"attendance"`
}

// Total sums every source.
func (b CreditBreakdown) Total() int {
	return b.Subjects + b.WorkExperience + b.Portfolio + b.Attendance
}

// Add accumulates credits for the given source.
func (b *CreditBreakdown) Add(source CreditSource, credits int) {
	switch source {
	case CreditSourceSubjects:
		b.Subjects += credits
	case CreditSourceWorkExperience:
		b.WorkExperience += credits
	case CreditSourcePortfolio:
		b.Portfolio += credits
	case CreditSourceAttendance:
		b.Attendance += credits
	}
}

// AchievementTier is a named credit band.
type AchievementTier string

const (
	TierDistinction   AchievementTier = "Distinction"
	TierMerit         AchievementTier = "Merit"
	TierPass          AchievementTier = "Pass"
	TierParticipation AchievementTier = "Participation"
	TierIncomplete    AchievementTier = "Incomplete"
)

// Rank orders tiers from Incomplete (0) to Distinction (4); unknown tiers rank -1.
func (t AchievementTier) Rank() int {
	switch t {
	case TierIncomplete:
		return 0
	case TierParticipation:
		return 1
	case TierPass:
		return 2
	case TierMerit:
		return 3
	case TierDistinction:
		return 4
	}
	return -1
}

// Achievement is the classification of a credit total.
type Achievement struct {
	Tier           AchievementTier `json:"tier"`
	MinimumCredits int             `json:"minimum_credits"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation"`
}
