package dto

import "github.com/noah-isme/ty-credit-api/internal/models"

// StudentCreditSummary is a student's credit position for display and certificates.
type StudentCreditSummary struct {
	StudentID      string                 `json:"student_id"`
	StudentName    string                 `json:"student_name,omitempty"`
	ClassGroupID   *string                `json:"class_group_id,omitempty"`
	ClassGroupName *string                `json:"class_group_name,omitempty"`
	Credits        models.CreditBreakdown `json:"credits"`
	Total          int                    `json:"total"`
	Achievement    models.Achievement     `json:"achievement"`
	Progress       int                    `json:"progress"`
}

// CohortKind selects how a cohort is scoped.
type CohortKind string

const (
	CohortClassGroup   CohortKind = "class_group"
	CohortAcademicYear CohortKind = "academic_year"
)

// CohortFilter scopes a cohort to a class group or an academic year.
type CohortFilter struct {
	ClassGroupID   string `form:"classGroupId"`
	AcademicYearID string `form:"academicYearId"`
}

// Kind returns the scope of the filter, preferring the narrower class group.
func (f CohortFilter) Kind() (CohortKind, string) {
	if f.ClassGroupID != "" {
		return CohortClassGroup, f.ClassGroupID
	}
	return CohortAcademicYear, f.AcademicYearID
}

// CohortSummary aggregates a cohort's credit positions.
type CohortSummary struct {
	Kind     CohortKind                     `json:"kind"`
	ScopeID  string                         `json:"scope_id"`
	Students []StudentCreditSummary         `json:"students"`
	Tiers    map[models.AchievementTier]int `json:"tiers"`
	Average  float64                        `json:"average"`
}

// BatchTotalsRequest asks for totals of many students at once.
type BatchTotalsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=2000,dive,required"`
}

// CreditsUpdateRequest sets the credits earned on a single row.
type CreditsUpdateRequest struct {
	Credits *int `json:"credits" binding:"required"`
}

// ClassificationResult is the classifier output for an arbitrary total.
type ClassificationResult struct {
	Total       int                    `json:"total"`
	Achievement models.Achievement     `json:"achievement"`
	Target      models.AchievementTier `json:"target"`
	Threshold   int                    `json:"threshold"`
	Progress    int                    `json:"progress"`
}

// StudentCreditRecords lists the raw non-subject credit rows of a student.
type StudentCreditRecords struct {
	StudentID      string                  `json:"student_id"`
	WorkExperience []models.WorkExperience `json:"work_experience"`
	Portfolios     []models.Portfolio      `json:"portfolios"`
	Attendance     []models.Attendance     `json:"attendance"`
}
