package models

import "time"

// Attendance holds the attendance credits a student earned for one term.
type Attendance struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Period        string    `db:"period" json:"period"`
	CreditsEarned int       `db:"credits_earned" json:"credits_earned"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
