package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

// AttendanceRepository persists per-term attendance credits.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertCredits writes credits for (student_id, period), inserting when absent.
func (r *AttendanceRepository) UpsertCredits(ctx context.Context, studentID, period string, credits int) error {
	const query = `INSERT INTO attendance (id, student_id, period, credits_earned, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (student_id, period)
DO UPDATE SET credits_earned = EXCLUDED.credits_earned, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, period, credits, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByStudent returns a student's attendance rows.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, period, COALESCE(credits_earned, 0) AS credits_earned, created_at, updated_at
        FROM attendance WHERE student_id = $1 ORDER BY period ASC`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}
