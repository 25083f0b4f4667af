package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type classGroupRepository interface {
	List(ctx context.Context, academicYearID string) ([]models.ClassGroupDetail, error)
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
	Create(ctx context.Context, group *models.ClassGroup) error
	Update(ctx context.Context, group *models.ClassGroup) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

type yearLookup interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
}

// ClassGroupRequest is the payload for creating or updating a class group.
type ClassGroupRequest struct {
	Name           string `json:"name" validate:"required,max=64"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
}

// ClassGroupService manages class groups.
type ClassGroupService struct {
	repo      classGroupRepository
	years     yearLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassGroupService constructs the service.
func NewClassGroupService(repo classGroupRepository, years yearLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassGroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassGroupService{repo: repo, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns class groups, optionally for one academic year.
func (s *ClassGroupService) List(ctx context.Context, academicYearID string) ([]models.ClassGroupDetail, error) {
	groups, err := s.repo.List(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class groups")
	}
	return groups, nil
}

// Get returns a class group by ID.
func (s *ClassGroupService) Get(ctx context.Context, id string) (*models.ClassGroup, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	return group, nil
}

// Create adds a class group to an existing academic year.
func (s *ClassGroupService) Create(ctx context.Context, req ClassGroupRequest) (*models.ClassGroup, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	group := &models.ClassGroup{Name: strings.TrimSpace(req.Name), AcademicYearID: req.AcademicYearID}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class group")
	}
	return group, nil
}

// Update renames or moves a class group.
func (s *ClassGroupService) Update(ctx context.Context, id string, req ClassGroupRequest) (*models.ClassGroup, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	group.Name = strings.TrimSpace(req.Name)
	group.AcademicYearID = req.AcademicYearID
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class group")
	}
	s.cache.InvalidateCohorts(ctx)
	return group, nil
}

// Delete removes a class group with no students.
func (s *ClassGroupService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class group students")
	}
	if count > 0 {
		return appErrors.Dependency("students", count, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class group")
	}
	s.cache.InvalidateCohorts(ctx)
	return nil
}

func (s *ClassGroupService) validateRequest(ctx context.Context, req ClassGroupRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class group payload")
	}
	if _, err := s.years.FindByID(ctx, req.AcademicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return nil
}
