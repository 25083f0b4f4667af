package models

import "time"

// Student represents a Transition Year learner.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	ClassGroupID *string   `db:"class_group_id" json:"class_group_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail contains student information with class group context.
type StudentDetail struct {
	Student
	ClassGroupName *string `db:"class_group_name" json:"class_group_name,omitempty"`
	AcademicYearID *string `db:"academic_year_id" json:"academic_year_id,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search         string
	ClassGroupID   string
	AcademicYearID string
	Unassigned     bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
