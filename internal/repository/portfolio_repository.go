package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

// PortfolioRepository persists portfolio reviews.
type PortfolioRepository struct {
	db *sqlx.DB
}

// NewPortfolioRepository constructs the repository.
func NewPortfolioRepository(db *sqlx.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Upsert writes the review keyed by (student_id, academic_year_id, period).
// On conflict p receives the stored row's id and created_at.
func (r *PortfolioRepository) Upsert(ctx context.Context, p *models.Portfolio) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	const query = `INSERT INTO portfolios (id, student_id, academic_year_id, period, credits_earned, interview_comments, feedback, teacher_id, created_at, updated_at)
VALUES (:id, :student_id, :academic_year_id, :period, :credits_earned, :interview_comments, :feedback, :teacher_id, :created_at, :updated_at)
ON CONFLICT (student_id, academic_year_id, period)
DO UPDATE SET credits_earned = EXCLUDED.credits_earned, interview_comments = EXCLUDED.interview_comments,
              feedback = EXCLUDED.feedback, teacher_id = EXCLUDED.teacher_id, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("upsert portfolio: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("upsert portfolio: %w", err)
		}
		return fmt.Errorf("upsert portfolio: no row returned")
	}
	if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("scan upserted portfolio: %w", err)
	}
	return rows.Err()
}

// ListByStudent returns a student's portfolio reviews.
func (r *PortfolioRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Portfolio, error) {
	const query = `SELECT id, student_id, academic_year_id, period, COALESCE(credits_earned, 0) AS credits_earned,
        interview_comments, feedback, teacher_id, created_at, updated_at
        FROM portfolios WHERE student_id = $1 ORDER BY period ASC`
	var rows []models.Portfolio
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	return rows, nil
}
