package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/repository"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type classGroupLookup interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
}

// StudentRequest is the payload for creating or updating a student. A nil
// ClassGroupID leaves the student unassigned.
type StudentRequest struct {
	Name         string  `json:"name" validate:"required,max=128"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ClassGroupID *string `json:"class_group_id"`
}

// StudentService manages student records.
type StudentService struct {
	repo      studentRepository
	groups    classGroupLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentRepository, groups classGroupLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, groups: groups, cache: cache, validator: validate, logger: logger}
}

// List returns paginated students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a student with class group context.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a student.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.StudentDetail, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	student := &models.Student{Name: strings.TrimSpace(req.Name), Email: normalizeEmail(req.Email), ClassGroupID: blankToNil(req.ClassGroupID)}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, s.mapWriteError(err, "failed to create student")
	}
	s.cache.InvalidateCohorts(ctx)
	return s.Get(ctx, student.ID)
}

// Update modifies a student, including class group assignment.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.StudentDetail, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	student := existing.Student
	student.Name = strings.TrimSpace(req.Name)
	student.Email = normalizeEmail(req.Email)
	student.ClassGroupID = blankToNil(req.ClassGroupID)
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, s.mapWriteError(err, "failed to update student")
	}
	s.cache.InvalidateCohorts(ctx)
	return s.Get(ctx, id)
}

// Delete removes a student. Credit rows go with it through the store's cascade.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.cache.InvalidateCohorts(ctx)
	return nil
}

func (s *StudentService) validateRequest(ctx context.Context, req StudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if id := blankToNil(req.ClassGroupID); id != nil {
		if _, err := s.groups.FindByID(ctx, *id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class group not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
		}
	}
	return nil
}

func (s *StudentService) mapWriteError(err error, message string) error {
	if repository.IsUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func blankToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
