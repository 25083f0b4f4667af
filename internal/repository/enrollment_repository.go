package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

const enrollmentColumns = "id, student_id, subject_id, term, COALESCE(credits_earned, 0) AS credits_earned, created_at, updated_at"

// EnrollmentRepository handles persistence of subject enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE id = $1"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByStudentAndSubject returns the unique enrollment for the pair.
func (r *EnrollmentRepository) FindByStudentAndSubject(ctx context.Context, studentID, subjectID string) (*models.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE student_id = $1 AND subject_id = $2"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, subjectID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns a student's enrollments with subject context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.subject_id, e.term, COALESCE(e.credits_earned, 0) AS credits_earned, e.created_at, e.updated_at,
        s.name AS subject_name, s.type AS subject_type, s.credit_value
        FROM enrollments e
        JOIN subjects s ON s.id = e.subject_id
        WHERE e.student_id = $1
        ORDER BY s.type ASC, s.name ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// FindOptionalConflict returns the first enrollment of the student in another
// optional subject for the same term, ordered by subject id. It returns nil
// when there is none.
func (r *EnrollmentRepository) FindOptionalConflict(ctx context.Context, studentID, subjectID, term string) (*models.EnrollmentConflict, error) {
	const query = `SELECT e.id AS enrollment_id, s.id AS subject_id, s.name AS subject_name
        FROM enrollments e
        JOIN subjects s ON s.id = e.subject_id
        WHERE e.student_id = $1 AND s.type = $2 AND s.id <> $3 AND e.term = $4
        ORDER BY s.id ASC
        LIMIT 1`
	var conflict models.EnrollmentConflict
	if err := r.db.GetContext(ctx, &conflict, query, studentID, models.SubjectTypeOptional, subjectID, term); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find optional enrollment conflict: %w", err)
	}
	return &conflict, nil
}

// Create inserts a new enrollment. Duplicate pairs surface as a unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, subject_id, term, credits_earned, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :term, :credits_earned, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateTerm changes the term of an existing enrollment, leaving credits untouched.
func (r *EnrollmentRepository) UpdateTerm(ctx context.Context, id string, term *string) error {
	const query = `UPDATE enrollments SET term = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, term, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment term: %w", err)
	}
	return nil
}

// UpdateCredits sets credits_earned within 0..subject.credit_value. The bound is
// part of the UPDATE so no writer can bypass it.
func (r *EnrollmentRepository) UpdateCredits(ctx context.Context, id string, credits int) error {
	const query = `UPDATE enrollments e SET credits_earned = $2, updated_at = $3
        FROM subjects s
        WHERE e.id = $1 AND s.id = e.subject_id AND $2 >= 0 AND $2 <= s.credit_value`
	res, err := r.db.ExecContext(ctx, query, id, credits, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment credits: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment credits rows: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM enrollments WHERE id = $1`, id); err != nil {
		return err
	}
	return ErrCreditsOutOfRange
}

// UpsertCredits writes credits and term for the pair, inserting when absent.
func (r *EnrollmentRepository) UpsertCredits(ctx context.Context, studentID, subjectID, term string, credits int) error {
	now := time.Now().UTC()
	const query = `INSERT INTO enrollments (id, student_id, subject_id, term, credits_earned, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (student_id, subject_id)
DO UPDATE SET term = EXCLUDED.term, credits_earned = EXCLUDED.credits_earned, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, subjectID, term, credits, now); err != nil {
		return fmt.Errorf("upsert enrollment credits: %w", err)
	}
	return nil
}

// DeleteByStudentAndSubject removes the pair's enrollment and reports whether a row existed.
func (r *EnrollmentRepository) DeleteByStudentAndSubject(ctx context.Context, studentID, subjectID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND subject_id = $2`, studentID, subjectID)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment rows: %w", err)
	}
	return affected > 0, nil
}
