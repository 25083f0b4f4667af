package models

import "time"

// Portfolio is a reviewed portfolio interview for one period of a year.
type Portfolio struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"student_id"`
	AcademicYearID    string    `db:"academic_year_id" json:"academic_year_id"`
	Period            string    `db:"period" json:"period"`
	CreditsEarned     int       `db:"credits_earned" json:"credits_earned"`
	InterviewComments *string   `db:"interview_comments" json:"interview_comments,omitempty"`
	Feedback          *string   `db:"feedback" json:"feedback,omitempty"`
	TeacherID         *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
