package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/service"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type creditService interface {
	StudentSummary(ctx context.Context, studentID string) (*dto.StudentCreditSummary, error)
	BatchTotals(ctx context.Context, req dto.BatchTotalsRequest) (map[string]int, error)
	CohortSummary(ctx context.Context, filter dto.CohortFilter) (*dto.CohortSummary, error)
}

// CreditHandler exposes credit aggregation endpoints.
type CreditHandler struct {
	service creditService
}

// NewCreditHandler constructs the handler.
func NewCreditHandler(svc creditService) *CreditHandler {
	return &CreditHandler{service: svc}
}

// StudentCredits godoc
// @Summary Credit breakdown and achievement for a student
// @Tags Credits
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/credits [get]
func (h *CreditHandler) StudentCredits(c *gin.Context) {
	summary, err := h.service.StudentSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// BatchTotals godoc
// @Summary Credit totals for many students
// @Tags Credits
// @Accept json
// @Produce json
// @Param payload body dto.BatchTotalsRequest true "Student IDs"
// @Success 200 {object} response.Envelope
// @Router /credits/batch [post]
func (h *CreditHandler) BatchTotals(c *gin.Context) {
	var req dto.BatchTotalsRequest
	if !bindJSON(c, &req) {
		return
	}
	totals, err := h.service.BatchTotals(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, totals, nil, map[string]interface{}{"count": len(totals)})
}

// Cohort godoc
// @Summary Credit summary for a class group or academic year
// @Tags Credits
// @Produce json
// @Param classGroupId query string false "Class group ID"
// @Param academicYearId query string false "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /credits/cohort [get]
func (h *CreditHandler) Cohort(c *gin.Context) {
	var filter dto.CohortFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	summary, err := h.service.CohortSummary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Classify godoc
// @Summary Classify a credit total
// @Tags Credits
// @Produce json
// @Param total query int true "Credit total"
// @Param target query string false "Target tier, defaults to Merit"
// @Success 200 {object} response.Envelope
// @Router /credits/classify [get]
func (h *CreditHandler) Classify(c *gin.Context) {
	total, err := strconv.Atoi(c.Query("total"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "total must be an integer"))
		return
	}
	target := models.AchievementTier(c.DefaultQuery("target", string(models.TierMerit)))
	if target.Rank() < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown target tier"))
		return
	}
	response.JSON(c, http.StatusOK, dto.ClassificationResult{
		Total:       total,
		Achievement: service.Classify(total),
		Target:      target,
		Threshold:   service.TierThreshold(target),
		Progress:    service.ProgressPercentage(total, target),
	}, nil)
}
