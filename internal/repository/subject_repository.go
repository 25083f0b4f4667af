package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

const subjectColumns = "id, name, academic_year_id, type, credit_value, created_at, updated_at"

// SubjectRepository handles subject persistence.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects filtered by year, type and name.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var conditions []string
	var args []interface{}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, "academic_year_id = "+arg(&args, filter.AcademicYearID))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = "+arg(&args, filter.Type))
	}
	if filter.Search != "" {
		conditions = append(conditions, "LOWER(name) LIKE "+arg(&args, "%"+strings.ToLower(filter.Search)+"%"))
	}
	query := "SELECT " + subjectColumns + " FROM subjects" + whereClause(conditions) + " ORDER BY id ASC"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID loads a subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, name, academic_year_id, type, credit_value, created_at, updated_at)
VALUES (:id, :name, :academic_year_id, :type, :credit_value, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, academic_year_id = :academic_year_id, type = :type, credit_value = :credit_value, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// CountEnrollments returns the number of enrollments referencing the subject.
func (r *SubjectRepository) CountEnrollments(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE subject_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count subject enrollments: %w", err)
	}
	return count, nil
}

// CountEnrollmentsAbove returns enrollments whose credits exceed max.
func (r *SubjectRepository) CountEnrollmentsAbove(ctx context.Context, id string, max int) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE subject_id = $1 AND credits_earned > $2`, id, max); err != nil {
		return 0, fmt.Errorf("count subject enrollments above credit value: %w", err)
	}
	return count, nil
}

// CountOptionalTermClashes returns students whose termed enrollment in this
// subject shares its term with an enrollment in another optional subject.
func (r *SubjectRepository) CountOptionalTermClashes(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(DISTINCT e.student_id)
FROM enrollments e
JOIN enrollments o ON o.student_id = e.student_id AND o.term = e.term AND o.subject_id <> e.subject_id
JOIN subjects s ON s.id = o.subject_id
WHERE e.subject_id = $1 AND e.term IS NOT NULL AND e.term <> '' AND s.type = 'optional'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count optional term clashes: %w", err)
	}
	return count, nil
}
