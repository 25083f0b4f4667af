package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type workExperienceRepository interface {
	FindByID(ctx context.Context, id string) (*models.WorkExperience, error)
	Create(ctx context.Context, row *models.WorkExperience) error
	UpdateCredits(ctx context.Context, id string, credits int) error
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.WorkExperience, error)
}

type portfolioRepository interface {
	Upsert(ctx context.Context, p *models.Portfolio) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Portfolio, error)
}

type attendanceRepository interface {
	attendanceWriter
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// AttendanceRequest records attendance credits for one term.
type AttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Period    string `json:"period" validate:"required"`
	Credits   int    `json:"credits" validate:"gte=0,lte=10"`
}

// WorkExperienceRequest records a work experience placement.
type WorkExperienceRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	Business  string    `json:"business" validate:"required,max=255"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Credits   int       `json:"credits" validate:"gte=0,lte=20"`
}

// PortfolioRequest records a portfolio review.
type PortfolioRequest struct {
	StudentID         string  `json:"student_id" validate:"required"`
	AcademicYearID    string  `json:"academic_year_id" validate:"required"`
	Period            string  `json:"period" validate:"required"`
	Credits           int     `json:"credits" validate:"gte=0,lte=50"`
	InterviewComments *string `json:"interview_comments"`
	Feedback          *string `json:"feedback"`
	TeacherID         *string `json:"teacher_id"`
}

// CreditRecordDeps groups the collaborators of CreditRecordService.
type CreditRecordDeps struct {
	Students       studentLookup
	Years          yearLookup
	Teachers       teacherLookup
	Attendance     attendanceRepository
	WorkExperience workExperienceRepository
	Portfolios     portfolioRepository
	Cache          *CacheService
}

// CreditRecordService writes credit rows for the non-subject sources. Every
// write is bounded by the source's maximum.
type CreditRecordService struct {
	deps      CreditRecordDeps
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCreditRecordService constructs the service.
func NewCreditRecordService(deps CreditRecordDeps, validate *validator.Validate, logger *zap.Logger) *CreditRecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditRecordService{deps: deps, validator: validate, logger: logger}
}

// RecordAttendance upserts attendance credits for (student, period).
func (s *CreditRecordService) RecordAttendance(ctx context.Context, req AttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("attendance credits must be between 0 and %d", models.MaxAttendanceCredits))
	}
	period := strings.TrimSpace(req.Period)
	if period != models.TermOne && period != models.TermTwo {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period must be %q or %q", models.TermOne, models.TermTwo))
	}
	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return err
	}
	if err := s.deps.Attendance.UpsertCredits(ctx, req.StudentID, period, req.Credits); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.deps.Cache.InvalidateCohorts(ctx)
	return nil
}

// RecordWorkExperience inserts a placement.
func (s *CreditRecordService) RecordWorkExperience(ctx context.Context, req WorkExperienceRequest) (*models.WorkExperience, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid work experience payload (credits 0..%d)", models.MaxWorkExperienceCredits))
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}
	row := &models.WorkExperience{
		StudentID:     req.StudentID,
		Business:      strings.TrimSpace(req.Business),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreditsEarned: req.Credits,
	}
	if err := s.deps.WorkExperience.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record work experience")
	}
	s.deps.Cache.InvalidateCohorts(ctx)
	return row, nil
}

// UpdateWorkExperienceCredits changes the credits of a placement.
func (s *CreditRecordService) UpdateWorkExperienceCredits(ctx context.Context, id string, credits int) (*models.WorkExperience, error) {
	if credits < 0 || credits > models.MaxWorkExperienceCredits {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("work experience credits must be between 0 and %d", models.MaxWorkExperienceCredits))
	}
	row, err := s.loadWorkExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deps.WorkExperience.UpdateCredits(ctx, id, credits); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update work experience")
	}
	row.CreditsEarned = credits
	s.deps.Cache.InvalidateCohorts(ctx)
	return row, nil
}

// DeleteWorkExperience removes a placement.
func (s *CreditRecordService) DeleteWorkExperience(ctx context.Context, id string) error {
	if _, err := s.loadWorkExperience(ctx, id); err != nil {
		return err
	}
	if err := s.deps.WorkExperience.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete work experience")
	}
	s.deps.Cache.InvalidateCohorts(ctx)
	return nil
}

// RecordPortfolio upserts a portfolio review for (student, year, period).
func (s *CreditRecordService) RecordPortfolio(ctx context.Context, req PortfolioRequest) (*models.Portfolio, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid portfolio payload (credits 0..%d)", models.MaxPortfolioCredits))
	}
	if err := s.ensureStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := s.deps.Years.FindByID(ctx, req.AcademicYearID); err != nil {
		return nil, notFoundOrInternal(err, "academic year not found", "failed to load academic year")
	}
	teacherID := blankToNil(req.TeacherID)
	if teacherID != nil {
		if _, err := s.deps.Teachers.FindByID(ctx, *teacherID); err != nil {
			return nil, notFoundOrInternal(err, "teacher not found", "failed to load teacher")
		}
	}

	portfolio := &models.Portfolio{
		StudentID:         req.StudentID,
		AcademicYearID:    req.AcademicYearID,
		Period:            strings.TrimSpace(req.Period),
		CreditsEarned:     req.Credits,
		InterviewComments: req.InterviewComments,
		Feedback:          req.Feedback,
		TeacherID:         teacherID,
	}
	if err := s.deps.Portfolios.Upsert(ctx, portfolio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record portfolio")
	}
	s.deps.Cache.InvalidateCohorts(ctx)
	return portfolio, nil
}

// ListRecords returns every non-subject credit row recorded for a student.
func (s *CreditRecordService) ListRecords(ctx context.Context, studentID string) (*dto.StudentCreditRecords, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	work, err := s.deps.WorkExperience.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work experience")
	}
	portfolios, err := s.deps.Portfolios.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list portfolios")
	}
	attendance, err := s.deps.Attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return &dto.StudentCreditRecords{
		StudentID:      studentID,
		WorkExperience: work,
		Portfolios:     portfolios,
		Attendance:     attendance,
	}, nil
}

func (s *CreditRecordService) ensureStudent(ctx context.Context, id string) error {
	if _, err := s.deps.Students.FindByID(ctx, id); err != nil {
		return notFoundOrInternal(err, "student not found", "failed to load student")
	}
	return nil
}

func (s *CreditRecordService) loadWorkExperience(ctx context.Context, id string) (*models.WorkExperience, error) {
	row, err := s.deps.WorkExperience.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work experience")
	}
	return row, nil
}
