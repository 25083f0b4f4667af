package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

// ClassGroupRepository manages class group persistence.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository constructs a ClassGroupRepository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// List returns class groups, optionally scoped to an academic year.
func (r *ClassGroupRepository) List(ctx context.Context, academicYearID string) ([]models.ClassGroupDetail, error) {
	query := `SELECT cg.id, cg.name, cg.academic_year_id, cg.created_at, cg.updated_at,
        ay.name AS academic_year_name,
        (SELECT COUNT(*) FROM students s WHERE s.class_group_id = cg.id) AS student_count
        FROM class_groups cg
        JOIN academic_years ay ON ay.id = cg.academic_year_id`
	var args []interface{}
	if academicYearID != "" {
		query += " WHERE cg.academic_year_id = $1"
		args = append(args, academicYearID)
	}
	query += " ORDER BY cg.name ASC"

	var groups []models.ClassGroupDetail
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list class groups: %w", err)
	}
	return groups, nil
}

// FindByID returns a class group by ID.
func (r *ClassGroupRepository) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	const query = `SELECT id, name, academic_year_id, created_at, updated_at FROM class_groups WHERE id = $1`
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create inserts a class group.
func (r *ClassGroupRepository) Create(ctx context.Context, group *models.ClassGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now
	const query = `INSERT INTO class_groups (id, name, academic_year_id, created_at, updated_at)
VALUES (:id, :name, :academic_year_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create class group: %w", err)
	}
	return nil
}

// Update renames or moves a class group.
func (r *ClassGroupRepository) Update(ctx context.Context, group *models.ClassGroup) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_groups SET name = :name, academic_year_id = :academic_year_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update class group: %w", err)
	}
	return nil
}

// Delete removes a class group.
func (r *ClassGroupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class group: %w", err)
	}
	return nil
}

// CountStudents returns the number of students assigned to the class group.
func (r *ClassGroupRepository) CountStudents(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE class_group_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count class group students: %w", err)
	}
	return count, nil
}
