package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, id string) (int, error)
	CountEnrollmentsAbove(ctx context.Context, id string, max int) (int, error)
	CountOptionalTermClashes(ctx context.Context, id string) (int, error)
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Name           string             `json:"name" validate:"required,max=128"`
	AcademicYearID string             `json:"academic_year_id" validate:"required"`
	Type           models.SubjectType `json:"type" validate:"required"`
	CreditValue    int                `json:"credit_value" validate:"gte=0"`
}

// SubjectService manages subjects and their credit values.
type SubjectService struct {
	repo      subjectRepository
	years     yearLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(repo subjectRepository, years yearLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns subjects for an optional academic year and type.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject type")
	}
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by ID.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	subject := &models.Subject{
		Name:           strings.TrimSpace(req.Name),
		AcademicYearID: req.AcademicYearID,
		Type:           req.Type,
		CreditValue:    req.CreditValue,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies a subject. Lowering the credit value below credits already
// earned by an enrollment is refused, as is turning a subject optional when a
// student would then hold two optional subjects in one term.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	if req.CreditValue < subject.CreditValue {
		above, err := s.repo.CountEnrollmentsAbove(ctx, id, req.CreditValue)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment credits")
		}
		if above > 0 {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%d enrollments already earned more than %d credits", above, req.CreditValue)),
				map[string]interface{}{"count": above},
			)
		}
	}

	if req.Type == models.SubjectTypeOptional && subject.Type != models.SubjectTypeOptional {
		clashes, err := s.repo.CountOptionalTermClashes(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check optional subject terms")
		}
		if clashes > 0 {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%d students already hold another optional subject in the same term", clashes)),
				map[string]interface{}{"count": clashes},
			)
		}
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.AcademicYearID = req.AcademicYearID
	subject.Type = req.Type
	subject.CreditValue = req.CreditValue
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	s.cache.InvalidateCohorts(ctx)
	return subject, nil
}

// Delete removes a subject with no enrollments.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject enrollments")
	}
	if count > 0 {
		return appErrors.Dependency("enrollments", count, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

func (s *SubjectService) validateRequest(ctx context.Context, req SubjectRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if !req.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "type must be one of core, optional, short, other")
	}
	if _, err := s.years.FindByID(ctx, req.AcademicYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return nil
}
