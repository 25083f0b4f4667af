package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/pkg/database"
)

const academicYearColumns = "id, name, start_date, end_date, is_current, current_since, created_at, updated_at"

// AcademicYearRepository handles persistence for academic years.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository instantiates an academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// List returns academic years matching provided filters.
func (r *AcademicYearRepository) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Search != "" {
		conditions = append(conditions, "LOWER(name) LIKE "+arg(&args, "%"+strings.ToLower(filter.Search)+"%"))
	}
	base := "FROM academic_years" + whereClause(conditions)

	allowedSorts := map[string]bool{"name": true, "start_date": true, "created_at": true}
	sortBy := filter.SortBy
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" {
		order = "DESC"
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", academicYearColumns, base, sortBy, order, size, offset)
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic years: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic years: %w", err)
	}
	return years, total, nil
}

// FindByID loads an academic year by identifier.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	query := "SELECT " + academicYearColumns + " FROM academic_years WHERE id = $1"
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// ListCurrent returns every row flagged current, most recently set first.
func (r *AcademicYearRepository) ListCurrent(ctx context.Context) ([]models.AcademicYear, error) {
	query := "SELECT " + academicYearColumns + " FROM academic_years WHERE is_current = TRUE ORDER BY current_since DESC NULLS LAST, updated_at DESC"
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list current academic years: %w", err)
	}
	return years, nil
}

// ExistsByName checks whether another year already uses the name.
func (r *AcademicYearRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM academic_years WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check academic year name: %w", err)
	}
	return true, nil
}

// Create inserts a new academic year. The current flag is applied separately via SetCurrent.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now
	year.IsCurrent = false
	year.CurrentSince = nil

	const query = `INSERT INTO academic_years (id, name, start_date, end_date, is_current, current_since, created_at, updated_at)
VALUES (:id, :name, :start_date, :end_date, :is_current, :current_since, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// Update modifies name and dates of an academic year.
func (r *AcademicYearRepository) Update(ctx context.Context, year *models.AcademicYear) error {
	year.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_years SET name = :name, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("update academic year: %w", err)
	}
	return nil
}

// SetCurrent clears the flag on every other year and sets it on id in one transaction.
func (r *AcademicYearRepository) SetCurrent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_current = FALSE, current_since = NULL, updated_at = $1 WHERE is_current = TRUE AND id <> $2`, now, id); err != nil {
			return fmt.Errorf("clear current academic years: %w", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_current = TRUE, current_since = $2, updated_at = $2 WHERE id = $1`, id, now)
		if err != nil {
			return fmt.Errorf("set current academic year: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// ClearCurrentExcept drops the current flag from every row but id.
func (r *AcademicYearRepository) ClearCurrentExcept(ctx context.Context, id string) error {
	const query = `UPDATE academic_years SET is_current = FALSE, current_since = NULL, updated_at = $1 WHERE is_current = TRUE AND id <> $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("reconcile current academic year: %w", err)
	}
	return nil
}

// Delete removes an academic year permanently.
func (r *AcademicYearRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM academic_years WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete academic year: %w", err)
	}
	return nil
}

// CountClassGroups returns the number of class groups referencing the year.
func (r *AcademicYearRepository) CountClassGroups(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM class_groups WHERE academic_year_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count academic year class groups: %w", err)
	}
	return count, nil
}

// CountSubjects returns the number of subjects referencing the year.
func (r *AcademicYearRepository) CountSubjects(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects WHERE academic_year_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count academic year subjects: %w", err)
	}
	return count, nil
}
