package models

import "time"

// ClassGroup is a cohort of students within one academic year.
type ClassGroup struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassGroupDetail enriches ClassGroup with year name and head count.
type ClassGroupDetail struct {
	ClassGroup
	AcademicYearName string `db:"academic_year_name" json:"academic_year_name"`
	StudentCount     int    `db:"student_count" json:"student_count"`
}
