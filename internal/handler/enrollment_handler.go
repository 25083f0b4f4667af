package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/service"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type enrollmentService interface {
	CanEnroll(ctx context.Context, studentID, subjectID, term string) (*models.EnrollmentEligibility, error)
	SetEnrollment(ctx context.Context, req service.SetEnrollmentRequest) (*models.Enrollment, error)
	BulkSet(ctx context.Context, req service.BulkEnrollmentRequest) (*dto.BatchReport, error)
	UpdateCredits(ctx context.Context, enrollmentID string, credits int) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// EnrollmentHandler exposes subject enrollment endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	enrollments, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Eligibility godoc
// @Summary Check whether a student may enroll in a subject
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Param subjectId query string true "Subject ID"
// @Param term query string false "Term 1 or Term 2"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/eligibility [get]
func (h *EnrollmentHandler) Eligibility(c *gin.Context) {
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId required"))
		return
	}
	result, err := h.service.CanEnroll(c.Request.Context(), c.Param("id"), subjectID, c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Set godoc
// @Summary Enroll, move or withdraw a student
// @Description A null term withdraws the student from the subject.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SetEnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /enrollments [put]
func (h *EnrollmentHandler) Set(c *gin.Context) {
	var req service.SetEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.SetEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if enrollment == nil {
		response.NoContent(c)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// BulkSet godoc
// @Summary Apply enrollment choices for one subject to many students
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.BulkEnrollmentRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/bulk [put]
func (h *EnrollmentHandler) BulkSet(c *gin.Context) {
	var req service.BulkEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.service.BulkSet(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// UpdateCredits godoc
// @Summary Set credits earned on an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.CreditsUpdateRequest true "Credits payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/credits [patch]
func (h *EnrollmentHandler) UpdateCredits(c *gin.Context) {
	var req dto.CreditsUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.UpdateCredits(c.Request.Context(), c.Param("id"), *req.Credits)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}
