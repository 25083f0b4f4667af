package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type reportServiceMock struct {
	file       *dto.ExportFile
	err        error
	lastFilter dto.CohortFilter
	lastFormat string
}

func (m *reportServiceMock) ExportCohort(ctx context.Context, filter dto.CohortFilter, format string) (*dto.ExportFile, error) {
	m.lastFilter = filter
	m.lastFormat = format
	return m.file, m.err
}

func TestReportHandlerCohortDownload(t *testing.T) {
	mockSvc := &reportServiceMock{file: &dto.ExportFile{
		Filename:    "credits-class_group-cg-1-20260301.csv",
		ContentType: "text/csv",
		Body:        []byte("Student,Total\nAoife,210\n"),
	}}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/cohort?classGroupId=cg-1", nil)
	handler.Cohort(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, "cg-1", mockSvc.lastFilter.ClassGroupID)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "credits-class_group-cg-1-20260301.csv")
	assert.Equal(t, "Student,Total\nAoife,210\n", w.Body.String())
}

func TestReportHandlerCohortRejectsFormat(t *testing.T) {
	mockSvc := &reportServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/cohort?academicYearId=ay-1&format=xlsx", nil)
	handler.Cohort(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "xlsx", mockSvc.lastFormat)
}
