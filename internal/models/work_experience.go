package models

import "time"

// WorkExperience records a placement and the credits it earned.
type WorkExperience struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Business      string    `db:"business" json:"business"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	CreditsEarned int       `db:"credits_earned" json:"credits_earned"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
