package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type academicYearRepository interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	ListCurrent(ctx context.Context) ([]models.AcademicYear, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	Update(ctx context.Context, year *models.AcademicYear) error
	SetCurrent(ctx context.Context, id string) error
	ClearCurrentExcept(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountClassGroups(ctx context.Context, id string) (int, error)
	CountSubjects(ctx context.Context, id string) (int, error)
}

// CreateAcademicYearRequest describes the payload for creating an academic year.
type CreateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsCurrent bool      `json:"is_current"`
}

// UpdateAcademicYearRequest updates the mutable fields of an academic year.
type UpdateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// AcademicYearService orchestrates academic year workflows.
type AcademicYearService struct {
	repo      academicYearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService creates a new academic year service.
func NewAcademicYearService(repo academicYearRepository, validate *validator.Validate, logger *zap.Logger) *AcademicYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated academic years.
func (s *AcademicYearService) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	years, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}
	return years, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns an academic year by ID.
func (s *AcademicYearService) Get(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year, nil
}

// GetCurrent returns the current academic year. When several rows are flagged
// the most recently set one wins and the rest are cleared.
func (s *AcademicYearService) GetCurrent(ctx context.Context) (*models.AcademicYear, error) {
	years, err := s.repo.ListCurrent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current academic year")
	}
	if len(years) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "current academic year not set")
	}
	current := years[0]
	if len(years) > 1 {
		s.logger.Warn("multiple current academic years found, reconciling",
			zap.String("keep", current.ID),
			zap.Int("flagged", len(years)),
		)
		if err := s.repo.ClearCurrentExcept(ctx, current.ID); err != nil {
			s.logger.Error("failed to reconcile current academic year", zap.Error(err))
		}
	}
	return &current, nil
}

// Create adds a new academic year, optionally making it current.
func (s *AcademicYearService) Create(ctx context.Context, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validate(req.Name, req.StartDate, req.EndDate, req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}

	year := &models.AcademicYear{Name: name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}

	if req.IsCurrent {
		return s.SetCurrent(ctx, year.ID)
	}
	return year, nil
}

// Update modifies an academic year's name and dates.
func (s *AcademicYearService) Update(ctx context.Context, id string, req UpdateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validate(req.Name, req.StartDate, req.EndDate, req); err != nil {
		return nil, err
	}
	year, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, id); err != nil {
		return nil, err
	}

	year.Name = name
	year.StartDate = req.StartDate
	year.EndDate = req.EndDate
	if err := s.repo.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}
	return year, nil
}

// SetCurrent makes id the only current academic year.
func (s *AcademicYearService) SetCurrent(ctx context.Context, id string) (*models.AcademicYear, error) {
	if err := s.repo.SetCurrent(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set current academic year")
	}
	s.logger.Info("current academic year changed", zap.String("academic_year_id", id))
	return s.Get(ctx, id)
}

// Delete removes an academic year that nothing references.
func (s *AcademicYearService) Delete(ctx context.Context, id string) error {
	year, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if year.IsCurrent {
		return appErrors.Dependency("current academic year", 1, "cannot delete the current academic year")
	}

	groups, err := s.repo.CountClassGroups(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class groups")
	}
	if groups > 0 {
		return appErrors.Dependency("class groups", groups, "")
	}

	subjects, err := s.repo.CountSubjects(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subjects")
	}
	if subjects > 0 {
		return appErrors.Dependency("subjects", subjects, "")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic year")
	}
	return nil
}

func (s *AcademicYearService) validate(name string, start, end time.Time, req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if strings.TrimSpace(name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}
	return nil
}

func (s *AcademicYearService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "academic year name already exists")
	}
	return nil
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
