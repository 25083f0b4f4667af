package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type stubSummarizer struct {
	summary *dto.CohortSummary
	err     error
}

func (s stubSummarizer) CohortSummary(ctx context.Context, filter dto.CohortFilter) (*dto.CohortSummary, error) {
	return s.summary, s.err
}

func sampleCohort() *dto.CohortSummary {
	class := "TY1"
	return &dto.CohortSummary{
		Kind:    dto.CohortClassGroup,
		ScopeID: "cg-1",
		Students: []dto.StudentCreditSummary{{
			StudentID:      "stu-1",
			StudentName:    "Aoife",
			ClassGroupName: &class,
			Credits:        models.CreditBreakdown{Subjects: 120, WorkExperience: 20, Portfolio: 50, Attendance: 20},
			Total:          210,
			Achievement:    Classify(210),
			Progress:       100,
		}},
	}
}

func TestExportCohortCSV(t *testing.T) {
	svc := NewReportService(stubSummarizer{summary: sampleCohort()}, ReportOptions{Enabled: true}, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }

	file, err := svc.ExportCohort(context.Background(), dto.CohortFilter{ClassGroupID: "cg-1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "credits-class_group-cg-1-20250501.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Aoife,TY1,120,20,50,20,210,Merit,100", lines[1])
}

func TestExportCohortPDF(t *testing.T) {
	svc := NewReportService(stubSummarizer{summary: sampleCohort()}, ReportOptions{Enabled: true, Title: "TY Credits"}, nil)

	file, err := svc.ExportCohort(context.Background(), dto.CohortFilter{ClassGroupID: "cg-1"}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportCohortErrors(t *testing.T) {
	disabled := NewReportService(stubSummarizer{summary: sampleCohort()}, ReportOptions{}, nil)
	_, err := disabled.ExportCohort(context.Background(), dto.CohortFilter{ClassGroupID: "cg-1"}, "csv")
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	svc := NewReportService(stubSummarizer{summary: sampleCohort()}, ReportOptions{Enabled: true}, nil)
	_, err = svc.ExportCohort(context.Background(), dto.CohortFilter{ClassGroupID: "cg-1"}, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	failing := NewReportService(stubSummarizer{err: appErrors.Clone(appErrors.ErrNotFound, "class group not found")}, ReportOptions{Enabled: true}, nil)
	_, err = failing.ExportCohort(context.Background(), dto.CohortFilter{ClassGroupID: "x"}, "csv")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
