package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/service"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type reportService interface {
	ExportCohort(ctx context.Context, filter dto.CohortFilter, format string) (*dto.ExportFile, error)
}

// ReportHandler exposes cohort report downloads.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Cohort godoc
// @Summary Download a cohort credit report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param classGroupId query string false "Class group ID"
// @Param academicYearId query string false "Academic year ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/cohort [get]
func (h *ReportHandler) Cohort(c *gin.Context) {
	var filter dto.CohortFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query"))
		return
	}
	file, err := h.reports.ExportCohort(c.Request.Context(), filter, c.DefaultQuery("format", service.ReportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
