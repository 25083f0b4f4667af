package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/service"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type bulkFillService interface {
	FillMax(ctx context.Context, req service.FillMaxRequest) (*dto.FillReport, error)
}

// AdminHandler exposes administrative maintenance endpoints.
type AdminHandler struct {
	fill bulkFillService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(fill bulkFillService) *AdminHandler {
	return &AdminHandler{fill: fill}
}

// FillMax godoc
// @Summary Award maximum credits for one source across an academic year
// @Description Requires confirm=true. A cancelled run returns the partial report.
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.FillMaxRequest true "Fill request"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/fill-max [post]
func (h *AdminHandler) FillMax(c *gin.Context) {
	var req service.FillMaxRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.fill.FillMax(c.Request.Context(), req)
	if err != nil {
		if report != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			response.Accepted(c, report, map[string]interface{}{"cancelled": true})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
