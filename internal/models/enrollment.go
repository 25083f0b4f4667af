package models

import "time"

// Scheduling periods used to scope optional-subject exclusivity.
const (
	TermOne      = "Term 1"
	TermTwo      = "Term 2"
	TermFullYear = "Full Year"
)

// ValidTerm reports whether term is one of the known scheduling periods.
func ValidTerm(term string) bool {
	switch term {
	case TermOne, TermTwo, TermFullYear:
		return true
	}
	return false
}

// Enrollment captures a student's registration to a subject. There is at most
// one row per (student_id, subject_id).
type Enrollment struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	Term          *string   `db:"term" json:"term,omitempty"`
	CreditsEarned int       `db:"credits_earned" json:"credits_earned"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with subject info.
type EnrollmentDetail struct {
	Enrollment
	SubjectName string      `db:"subject_name" json:"subject_name"`
	SubjectType SubjectType `db:"subject_type" json:"subject_type"`
	CreditValue int         `db:"credit_value" json:"credit_value"`
}

// EnrollmentConflict identifies the optional enrollment blocking a new one.
type EnrollmentConflict struct {
	EnrollmentID string `db:"enrollment_id" json:"enrollment_id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
}

// EnrollmentEligibility is the outcome of an eligibility check.
type EnrollmentEligibility struct {
	Allowed  bool                `json:"allowed"`
	Conflict *EnrollmentConflict `json:"conflict,omitempty"`
}
