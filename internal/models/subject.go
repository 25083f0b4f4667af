package models

import "time"

// SubjectType classifies a subject for enrollment eligibility rules.
type SubjectType string

const (
	SubjectTypeCore     SubjectType = "core"
	SubjectTypeOptional SubjectType = "optional"
	SubjectTypeShort    SubjectType = "short"
	SubjectTypeOther    SubjectType = "other"
)

// Valid reports whether the subject type is known.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectTypeCore, SubjectTypeOptional, SubjectTypeShort, SubjectTypeOther:
		return true
	}
	return false
}

// Subject is a creditable unit offered in an academic year. CreditValue is the
// most a single enrollment may earn.
type Subject struct {
	ID             string      `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	AcademicYearID string      `db:"academic_year_id" json:"academic_year_id"`
	Type           SubjectType `db:"type" json:"type"`
	CreditValue    int         `db:"credit_value" json:"credit_value"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	AcademicYearID string
	Type           SubjectType
	Search         string
}
