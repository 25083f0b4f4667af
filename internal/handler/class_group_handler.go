package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/service"
	"github.com/noah-isme/ty-credit-api/pkg/response"
)

type classGroupService interface {
	List(ctx context.Context, academicYearID string) ([]models.ClassGroupDetail, error)
	Create(ctx context.Context, req service.ClassGroupRequest) (*models.ClassGroup, error)
	Update(ctx context.Context, id string, req service.ClassGroupRequest) (*models.ClassGroup, error)
	Delete(ctx context.Context, id string) error
}

// ClassGroupHandler exposes class group endpoints.
type ClassGroupHandler struct {
	service classGroupService
}

// NewClassGroupHandler constructs the handler.
func NewClassGroupHandler(svc classGroupService) *ClassGroupHandler {
	return &ClassGroupHandler{service: svc}
}

// List godoc
// @Summary List class groups
// @Tags ClassGroups
// @Produce json
// @Param academicYearId query string false "Academic year filter"
// @Success 200 {object} response.Envelope
// @Router /class-groups [get]
func (h *ClassGroupHandler) List(c *gin.Context) {
	groups, err := h.service.List(c.Request.Context(), c.Query("academicYearId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Create godoc
// @Summary Create class group
// @Tags ClassGroups
// @Accept json
// @Produce json
// @Param payload body service.ClassGroupRequest true "Class group payload"
// @Success 201 {object} response.Envelope
// @Router /class-groups [post]
func (h *ClassGroupHandler) Create(c *gin.Context) {
	var req service.ClassGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update class group
// @Tags ClassGroups
// @Accept json
// @Produce json
// @Param id path string true "Class group ID"
// @Param payload body service.ClassGroupRequest true "Class group payload"
// @Success 200 {object} response.Envelope
// @Router /class-groups/{id} [put]
func (h *ClassGroupHandler) Update(c *gin.Context) {
	var req service.ClassGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Delete class group
// @Tags ClassGroups
// @Param id path string true "Class group ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /class-groups/{id} [delete]
func (h *ClassGroupHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
