package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

const workExperienceColumns = "id, student_id, business, start_date, end_date, COALESCE(credits_earned, 0) AS credits_earned, created_at, updated_at"

// WorkExperienceRepository persists work experience placements.
type WorkExperienceRepository struct {
	db *sqlx.DB
}

// NewWorkExperienceRepository constructs the repository.
func NewWorkExperienceRepository(db *sqlx.DB) *WorkExperienceRepository {
	return &WorkExperienceRepository{db: db}
}

// FindByID loads a placement.
func (r *WorkExperienceRepository) FindByID(ctx context.Context, id string) (*models.WorkExperience, error) {
	query := "SELECT " + workExperienceColumns + " FROM work_experience WHERE id = $1"
	var row models.WorkExperience
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindFirstByStudent returns the canonical (earliest) placement of a student.
func (r *WorkExperienceRepository) FindFirstByStudent(ctx context.Context, studentID string) (*models.WorkExperience, error) {
	query := "SELECT " + workExperienceColumns + " FROM work_experience WHERE student_id = $1 ORDER BY start_date ASC, created_at ASC, id ASC LIMIT 1"
	var row models.WorkExperience
	if err := r.db.GetContext(ctx, &row, query, studentID); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByStudent returns every placement of a student.
func (r *WorkExperienceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.WorkExperience, error) {
	query := "SELECT " + workExperienceColumns + " FROM work_experience WHERE student_id = $1 ORDER BY start_date ASC, id ASC"
	var rows []models.WorkExperience
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list work experience: %w", err)
	}
	return rows, nil
}

// Create inserts a placement.
func (r *WorkExperienceRepository) Create(ctx context.Context, row *models.WorkExperience) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	const query = `INSERT INTO work_experience (id, student_id, business, start_date, end_date, credits_earned, created_at, updated_at)
VALUES (:id, :student_id, :business, :start_date, :end_date, :credits_earned, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create work experience: %w", err)
	}
	return nil
}

// UpdateCredits changes only the credits of a placement.
func (r *WorkExperienceRepository) UpdateCredits(ctx context.Context, id string, credits int) error {
	const query = `UPDATE work_experience SET credits_earned = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, credits, time.Now().UTC()); err != nil {
		return fmt.Errorf("update work experience credits: %w", err)
	}
	return nil
}

// Delete removes a placement.
func (r *WorkExperienceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM work_experience WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete work experience: %w", err)
	}
	return nil
}
