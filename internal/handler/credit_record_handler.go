package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/service"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type creditRecordService interface {
	RecordAttendance(ctx context.Context, req service.AttendanceRequest) error
	RecordWorkExperience(ctx context.Context, req service.WorkExperienceRequest) (*models.WorkExperience, error)
	UpdateWorkExperienceCredits(ctx context.Context, id string, credits int) (*models.WorkExperience, error)
	DeleteWorkExperience(ctx context.Context, id string) error
	RecordPortfolio(ctx context.Context, req service.PortfolioRequest) (*models.Portfolio, error)
	ListRecords(ctx context.Context, studentID string) (*dto.StudentCreditRecords, error)
}

// CreditRecordHandler records non-subject credit sources.
type CreditRecordHandler struct {
	service creditRecordService
}

// NewCreditRecordHandler constructs the handler.
func NewCreditRecordHandler(svc creditRecordService) *CreditRecordHandler {
	return &CreditRecordHandler{service: svc}
}

// Attendance godoc
// @Summary Record attendance credits for a term
// @Tags CreditRecords
// @Accept json
// @Param payload body service.AttendanceRequest true "Attendance payload"
// @Success 204
// @Router /attendance [put]
func (h *CreditRecordHandler) Attendance(c *gin.Context) {
	var req service.AttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.RecordAttendance(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateWorkExperience godoc
// @Summary Record a work experience placement
// @Tags CreditRecords
// @Accept json
// @Produce json
// @Param payload body service.WorkExperienceRequest true "Work experience payload"
// @Success 201 {object} response.Envelope
// @Router /work-experience [post]
func (h *CreditRecordHandler) CreateWorkExperience(c *gin.Context) {
	var req service.WorkExperienceRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.service.RecordWorkExperience(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// UpdateWorkExperienceCredits godoc
// @Summary Set credits on a work experience placement
// @Tags CreditRecords
// @Accept json
// @Produce json
// @Param id path string true "Work experience ID"
// @Param payload body dto.CreditsUpdateRequest true "Credits payload"
// @Success 200 {object} response.Envelope
// @Router /work-experience/{id}/credits [patch]
func (h *CreditRecordHandler) UpdateWorkExperienceCredits(c *gin.Context) {
	var req dto.CreditsUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.service.UpdateWorkExperienceCredits(c.Request.Context(), c.Param("id"), *req.Credits)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// DeleteWorkExperience godoc
// @Summary Delete a work experience placement
// @Tags CreditRecords
// @Param id path string true "Work experience ID"
// @Success 204
// @Router /work-experience/{id} [delete]
func (h *CreditRecordHandler) DeleteWorkExperience(c *gin.Context) {
	if err := h.service.DeleteWorkExperience(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Portfolio godoc
// @Summary Record a portfolio review
// @Tags CreditRecords
// @Accept json
// @Produce json
// @Param payload body service.PortfolioRequest true "Portfolio payload"
// @Success 200 {object} response.Envelope
// @Router /portfolios [put]
func (h *CreditRecordHandler) Portfolio(c *gin.Context) {
	var req service.PortfolioRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.service.RecordPortfolio(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ListByStudent godoc
// @Summary List a student's work experience, portfolio and attendance rows
// @Tags CreditRecords
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/credit-records [get]
func (h *CreditRecordHandler) ListByStudent(c *gin.Context) {
	records, err := h.service.ListRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
