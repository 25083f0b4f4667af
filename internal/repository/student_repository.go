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

const studentDetailSelect = `SELECT s.id, s.name, s.email, s.class_group_id, s.created_at, s.updated_at,
        cg.name AS class_group_name, cg.academic_year_id AS academic_year_id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.ClassGroupID != "" {
		conditions = append(conditions, "s.class_group_id = "+arg(&args, filter.ClassGroupID))
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, "cg.academic_year_id = "+arg(&args, filter.AcademicYearID))
	}
	if filter.Unassigned {
		conditions = append(conditions, "s.class_group_id IS NULL")
	}
	if filter.Search != "" {
		p := arg(&args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE %s OR LOWER(COALESCE(s.email, '')) LIKE %s)", p, p))
	}
	base := "FROM students s LEFT JOIN class_groups cg ON cg.id = s.class_group_id" + whereClause(conditions)

	allowedSorts := map[string]string{
		"name":       "s.name",
		"created_at": "s.created_at",
		"class":      "cg.name",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.name"
	}
	order := normalizeOrder(filter.SortOrder)
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s %s ORDER BY %s %s, s.id ASC LIMIT %d OFFSET %d", studentDetailSelect, base, column, order, size, offset)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student with class group context.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := studentDetailSelect + " FROM students s LEFT JOIN class_groups cg ON cg.id = s.class_group_id WHERE s.id = $1"
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByAcademicYear returns every student whose class group belongs to the year.
func (r *StudentRepository) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.StudentDetail, error) {
	query := studentDetailSelect + ` FROM students s
        JOIN class_groups cg ON cg.id = s.class_group_id
        WHERE cg.academic_year_id = $1 ORDER BY s.id ASC`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list students by academic year: %w", err)
	}
	return students, nil
}

// ListByClassGroup returns every student assigned to the class group.
func (r *StudentRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.StudentDetail, error) {
	query := studentDetailSelect + ` FROM students s
        JOIN class_groups cg ON cg.id = s.class_group_id
        WHERE s.class_group_id = $1 ORDER BY s.id ASC`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list students by class group: %w", err)
	}
	return students, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, email, class_group_id, created_at, updated_at)
VALUES (:id, :name, :email, :class_group_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies student fields including class group assignment.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, class_group_id = :class_group_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
