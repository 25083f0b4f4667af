package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/service"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type academicYearServiceMock struct {
	listResp   []models.AcademicYear
	lastFilter models.AcademicYearFilter
	deleteErr  error
	createErr  error
	lastCreate service.CreateAcademicYearRequest
}

func (m *academicYearServiceMock) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.listResp)}, nil
}

func (m *academicYearServiceMock) Get(ctx context.Context, id string) (*models.AcademicYear, error) {
	return &models.AcademicYear{ID: id}, nil
}

func (m *academicYearServiceMock) GetCurrent(ctx context.Context) (*models.AcademicYear, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no current academic year")
}

func (m *academicYearServiceMock) Create(ctx context.Context, req service.CreateAcademicYearRequest) (*models.AcademicYear, error) {
	m.lastCreate = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.AcademicYear{ID: "ay-1", Name: req.Name}, nil
}

func (m *academicYearServiceMock) Update(ctx context.Context, id string, req service.UpdateAcademicYearRequest) (*models.AcademicYear, error) {
	return &models.AcademicYear{ID: id}, nil
}

func (m *academicYearServiceMock) SetCurrent(ctx context.Context, id string) (*models.AcademicYear, error) {
	return &models.AcademicYear{ID: id, IsCurrent: true}, nil
}

func (m *academicYearServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func TestAcademicYearHandlerListPaging(t *testing.T) {
	mockSvc := &academicYearServiceMock{listResp: []models.AcademicYear{{ID: "ay-1"}}}
	handler := NewAcademicYearHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/academic-years?page=2&limit=5&search=2025", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 5, mockSvc.lastFilter.PageSize)
	assert.Equal(t, "2025", mockSvc.lastFilter.Search)
}

func TestAcademicYearHandlerCurrentMissing(t *testing.T) {
	handler := NewAcademicYearHandler(&academicYearServiceMock{})

	c, w := newGinContext(http.MethodGet, "/academic-years/current", nil)
	handler.Current(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcademicYearHandlerCreateInvalidBody(t *testing.T) {
	mockSvc := &academicYearServiceMock{}
	handler := NewAcademicYearHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/academic-years", []byte(`{"name":`))
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.lastCreate.Name)
}

func TestAcademicYearHandlerDeleteBlocked(t *testing.T) {
	handler := NewAcademicYearHandler(&academicYearServiceMock{deleteErr: appErrors.Dependency("class groups", 4, "")})

	c, w := newGinContext(http.MethodDelete, "/academic-years/ay-1", nil, gin.Param{Key: "id", Value: "ay-1"})
	handler.Delete(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, appErrors.ErrDependency.Code, env.Error.Code)
	assert.Equal(t, float64(4), env.Error.Details["count"])
}

func TestAcademicYearHandlerDelete(t *testing.T) {
	handler := NewAcademicYearHandler(&academicYearServiceMock{})

	c, w := newGinContext(http.MethodDelete, "/academic-years/ay-1", nil, gin.Param{Key: "id", Value: "ay-1"})
	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
