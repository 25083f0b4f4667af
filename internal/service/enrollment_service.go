package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/repository"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByStudentAndSubject(ctx context.Context, studentID, subjectID string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	FindOptionalConflict(ctx context.Context, studentID, subjectID, term string) (*models.EnrollmentConflict, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateTerm(ctx context.Context, id string, term *string) error
	UpdateCredits(ctx context.Context, id string, credits int) error
	DeleteByStudentAndSubject(ctx context.Context, studentID, subjectID string) (bool, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type subjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// SetEnrollmentRequest sets or clears a student's enrollment in a subject.
// A nil Term removes the enrollment.
type SetEnrollmentRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Term      *string `json:"term"`
}

// BulkEnrollmentEntry is one student's row in a bulk enrollment save.
type BulkEnrollmentEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Enrolled  bool   `json:"enrolled"`
	Term      string `json:"term"`
}

// BulkEnrollmentRequest applies enrollment changes for many students in one subject.
type BulkEnrollmentRequest struct {
	SubjectID string                `json:"subject_id" validate:"required"`
	Entries   []BulkEnrollmentEntry `json:"entries" validate:"required,min=1,max=1000,dive"`
}

// EnrollmentServiceOptions tunes enrollment policy.
type EnrollmentServiceOptions struct {
	AllowOptionalWithoutTerm bool
}

// EnrollmentService resolves eligibility and maintains enrollments.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentLookup
	subjects  subjectLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	opts      EnrollmentServiceOptions
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, students studentLookup, subjects subjectLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger, opts EnrollmentServiceOptions) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		subjects:  subjects,
		cache:     cache,
		validator: validate,
		logger:    logger,
		opts:      opts,
	}
}

// CanEnroll reports whether the student may take subjectID in term. An
// optional subject conflicts with another optional enrollment in the same term.
func (s *EnrollmentService) CanEnroll(ctx context.Context, studentID, subjectID, term string) (*models.EnrollmentEligibility, error) {
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.eligibility(ctx, studentID, subject, strings.TrimSpace(term))
}

// SetEnrollment creates, updates or removes the (student, subject) enrollment.
// Existing rows only have their term changed; credits are preserved.
func (s *EnrollmentService) SetEnrollment(ctx context.Context, req SetEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if req.Term == nil {
		deleted, err := s.repo.DeleteByStudentAndSubject(ctx, req.StudentID, req.SubjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove enrollment")
		}
		if deleted {
			s.cache.InvalidateCohorts(ctx)
		}
		return nil, nil
	}

	term := strings.TrimSpace(*req.Term)
	if term != "" && !models.ValidTerm(term) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("term must be one of %q, %q, %q", models.TermOne, models.TermTwo, models.TermFullYear))
	}
	if _, err := s.loadStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}
	subject, err := s.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if subject.Type == models.SubjectTypeOptional && term == "" && !s.opts.AllowOptionalWithoutTerm {
		return nil, appErrors.Clone(appErrors.ErrValidation, "optional subjects require a term")
	}

	eligibility, err := s.eligibility(ctx, req.StudentID, subject, term)
	if err != nil {
		return nil, err
	}
	if !eligibility.Allowed {
		conflict := eligibility.Conflict
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("already enrolled in %s for %s", conflict.SubjectName, term)),
			map[string]interface{}{"conflict": conflict},
		)
	}

	var termValue *string
	if term != "" {
		termValue = &term
	}
	if err := s.upsert(ctx, req.StudentID, req.SubjectID, termValue); err != nil {
		return nil, err
	}
	s.cache.InvalidateCohorts(ctx)

	enrollment, err := s.repo.FindByStudentAndSubject(ctx, req.StudentID, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// BulkSet applies SetEnrollment for every entry, collecting failures instead of
// stopping. Cancellation returns the partial report with the context error.
func (s *EnrollmentService) BulkSet(ctx context.Context, req BulkEnrollmentRequest) (*dto.BatchReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk enrollment payload")
	}
	if _, err := s.loadSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	report := &dto.BatchReport{}
	for _, entry := range req.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		set := SetEnrollmentRequest{StudentID: entry.StudentID, SubjectID: req.SubjectID}
		if entry.Enrolled {
			term := entry.Term
			set.Term = &term
		}
		if _, err := s.SetEnrollment(ctx, set); err != nil {
			report.AddFailure(entry.StudentID, req.SubjectID, err)
			continue
		}
		report.Updated++
	}
	if report.Failed > 0 {
		s.logger.Warn("bulk enrollment completed with failures",
			zap.String("subject_id", req.SubjectID),
			zap.Int("updated", report.Updated),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

// UpdateCredits sets credits earned on an enrollment within 0..credit_value.
func (s *EnrollmentService) UpdateCredits(ctx context.Context, enrollmentID string, credits int) (*models.Enrollment, error) {
	if credits < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "credits must not be negative")
	}
	if err := s.repo.UpdateCredits(ctx, enrollmentID, credits); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		case errors.Is(err, repository.ErrCreditsOutOfRange):
			return nil, appErrors.Clone(appErrors.ErrValidation, "credits exceed the subject credit value")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment credits")
	}
	s.cache.InvalidateCohorts(ctx)

	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// ListByStudent returns a student's enrollments with subject details.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) eligibility(ctx context.Context, studentID string, subject *models.Subject, term string) (*models.EnrollmentEligibility, error) {
	if term == "" || subject.Type != models.SubjectTypeOptional {
		return &models.EnrollmentEligibility{Allowed: true}, nil
	}
	conflict, err := s.repo.FindOptionalConflict(ctx, studentID, subject.ID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment conflicts")
	}
	if conflict != nil {
		return &models.EnrollmentEligibility{Allowed: false, Conflict: conflict}, nil
	}
	return &models.EnrollmentEligibility{Allowed: true}, nil
}

func (s *EnrollmentService) upsert(ctx context.Context, studentID, subjectID string, term *string) error {
	existing, err := s.repo.FindByStudentAndSubject(ctx, studentID, subjectID)
	switch {
	case err == nil:
		return s.updateTerm(ctx, existing.ID, term)
	case !errors.Is(err, sql.ErrNoRows):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	created := &models.Enrollment{StudentID: studentID, SubjectID: subjectID, Term: term}
	err = s.repo.Create(ctx, created)
	if err == nil {
		return nil
	}
	if !repository.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	// a concurrent writer inserted the pair first; keep its row and apply our term
	existing, err = s.repo.FindByStudentAndSubject(ctx, studentID, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return s.updateTerm(ctx, existing.ID, term)
}

func (s *EnrollmentService) updateTerm(ctx context.Context, id string, term *string) error {
	if err := s.repo.UpdateTerm(ctx, id, term); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return nil
}

func (s *EnrollmentService) loadStudent(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *EnrollmentService) loadSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}
