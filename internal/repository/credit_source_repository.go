package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ty-credit-api/internal/models"
)

// BatchChunkSize caps the number of student ids bound into one aggregate query.
const BatchChunkSize = 500

// CreditSource is a table of credit rows keyed by student.
type CreditSource interface {
	Source() models.CreditSource
	CreditsForStudent(ctx context.Context, studentID string) (int, error)
	CreditsForStudents(ctx context.Context, studentIDs []string) (map[string]int, error)
}

// CreditSourceRepository sums credits_earned from a single credit table.
type CreditSourceRepository struct {
	db     *sqlx.DB
	source models.CreditSource
	table  string
}

// NewCreditSourceRepository constructs a source over the given table.
func NewCreditSourceRepository(db *sqlx.DB, source models.CreditSource, table string) *CreditSourceRepository {
	return &CreditSourceRepository{db: db, source: source, table: table}
}

// NewCreditSources returns every credit-bearing table in aggregation order.
func NewCreditSources(db *sqlx.DB) []CreditSource {
	return []CreditSource{
		NewCreditSourceRepository(db, models.CreditSourceSubjects, "enrollments"),
		NewCreditSourceRepository(db, models.CreditSourceWorkExperience, "work_experience"),
		NewCreditSourceRepository(db, models.CreditSourcePortfolio, "portfolios"),
		NewCreditSourceRepository(db, models.CreditSourceAttendance, "attendance"),
	}
}

// Source identifies the breakdown bucket this repository feeds.
func (r *CreditSourceRepository) Source() models.CreditSource {
	return r.source
}

// CreditsForStudent returns the summed credits of one student, 0 when there are no rows.
func (r *CreditSourceRepository) CreditsForStudent(ctx context.Context, studentID string) (int, error) {
	query := fmt.Sprintf("SELECT COALESCE(SUM(credits_earned), 0) FROM %s WHERE student_id = $1", r.table)
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID); err != nil {
		return 0, fmt.Errorf("sum %s credits: %w", r.source, err)
	}
	return total, nil
}

// CreditsForStudents returns summed credits per student. Students without rows
// are absent from the map. Ids are bound in chunks of BatchChunkSize.
func (r *CreditSourceRepository) CreditsForStudents(ctx context.Context, studentIDs []string) (map[string]int, error) {
	totals := make(map[string]int, len(studentIDs))
	query := fmt.Sprintf("SELECT student_id, COALESCE(SUM(credits_earned), 0) AS total FROM %s WHERE student_id = ANY($1) GROUP BY student_id", r.table)

	for start := 0; start < len(studentIDs); start += BatchChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + BatchChunkSize
		if end > len(studentIDs) {
			end = len(studentIDs)
		}

		var rows []struct {
			StudentID string `db:"student_id"`
			Total     int    `db:"total"`
		}
		if err := r.db.SelectContext(ctx, &rows, query, pq.Array(studentIDs[start:end])); err != nil {
			return nil, fmt.Errorf("sum %s credits batch: %w", r.source, err)
		}
		for _, row := range rows {
			totals[row.StudentID] += row.Total
		}
	}
	return totals, nil
}
