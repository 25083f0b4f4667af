package models

import "time"

// AcademicYear models a school year such as "2023-2024".
// At most one year is current at a time; CurrentSince breaks ties when a
// transient state leaves several rows flagged.
type AcademicYear struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      time.Time  `db:"end_date" json:"end_date"`
	IsCurrent    bool       `db:"is_current" json:"is_current"`
	CurrentSince *time.Time `db:"current_since" json:"current_since,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter defines filters supported by list endpoints.
type AcademicYearFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
