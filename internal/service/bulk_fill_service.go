package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type attendanceWriter interface {
	UpsertCredits(ctx context.Context, studentID, period string, credits int) error
}

type workExperienceWriter interface {
	FindFirstByStudent(ctx context.Context, studentID string) (*models.WorkExperience, error)
	Create(ctx context.Context, row *models.WorkExperience) error
	UpdateCredits(ctx context.Context, id string, credits int) error
}

type subjectLister interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
}

type enrollmentCreditWriter interface {
	UpsertCredits(ctx context.Context, studentID, subjectID, term string, credits int) error
}

// FillMaxRequest asks for every student of a year to receive maximum credits
// for one source. Confirm must be set; the run overwrites existing values.
type FillMaxRequest struct {
	AcademicYearID string         `json:"academic_year_id" validate:"required"`
	Source         dto.FillSource `json:"source" validate:"required"`
	Confirm        bool           `json:"confirm"`
}

// BulkFillDeps groups the collaborators of BulkFillService.
type BulkFillDeps struct {
	Years          yearLookup
	Students       cohortStudentLister
	Attendance     attendanceWriter
	WorkExperience workExperienceWriter
	Subjects       subjectLister
	Enrollments    enrollmentCreditWriter
	Cache          *CacheService
	Metrics        *MetricsService
}

// BulkFillOptions carries fill-max configuration.
type BulkFillOptions struct {
	Enabled             bool
	PlaceholderBusiness string
}

// BulkFillService sets maximum credits for a whole academic year.
type BulkFillService struct {
	deps      BulkFillDeps
	opts      BulkFillOptions
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBulkFillService constructs the service.
func NewBulkFillService(deps BulkFillDeps, opts BulkFillOptions, validate *validator.Validate, logger *zap.Logger) *BulkFillService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PlaceholderBusiness == "" {
		opts.PlaceholderBusiness = "Work Experience Placement"
	}
	return &BulkFillService{deps: deps, opts: opts, validator: validate, logger: logger}
}

type fillTarget struct {
	name  string
	write func(ctx context.Context, studentID string) error
}

// FillMax writes maximum credits for req.Source to every student whose class
// group belongs to the year. Row failures are reported, not fatal. Running it
// twice leaves the same rows.
func (s *BulkFillService) FillMax(ctx context.Context, req FillMaxRequest) (*dto.FillReport, error) {
	if !s.opts.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "bulk fill is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fill payload")
	}
	if !req.Confirm {
		return nil, appErrors.Clone(appErrors.ErrValidation, "confirm must be true to overwrite credits")
	}
	if !req.Source.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source must be one of attendance, workExperience, shortCourses")
	}

	year, err := s.deps.Years.FindByID(ctx, req.AcademicYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	targets, err := s.targets(ctx, year, req.Source)
	if err != nil {
		return nil, err
	}
	students, err := s.deps.Students.ListByAcademicYear(ctx, year.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	report := &dto.FillReport{AcademicYearID: year.ID, Source: req.Source, Students: len(students)}
	defer func() {
		if report.Updated > 0 {
			s.deps.Cache.InvalidateCohorts(context.WithoutCancel(ctx))
		}
	}()

	for _, student := range students {
		for _, target := range targets {
			if err := ctx.Err(); err != nil {
				report.Cancelled = true
				s.logger.Warn("fill max cancelled",
					zap.String("academic_year_id", year.ID),
					zap.String("source", string(req.Source)),
					zap.Int("updated", report.Updated),
				)
				return report, err
			}
			if err := target.write(ctx, student.ID); err != nil {
				report.AddFailure(student.ID, target.name, err)
				s.deps.Metrics.RecordBulkFillRow(string(req.Source), "failed")
				continue
			}
			report.Updated++
			s.deps.Metrics.RecordBulkFillRow(string(req.Source), "updated")
		}
	}

	s.logger.Info("fill max completed",
		zap.String("academic_year_id", year.ID),
		zap.String("source", string(req.Source)),
		zap.Int("students", report.Students),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *BulkFillService) targets(ctx context.Context, year *models.AcademicYear, source dto.FillSource) ([]fillTarget, error) {
	switch source {
	case dto.FillAttendance:
		targets := make([]fillTarget, 0, 2)
		for _, period := range []string{models.TermOne, models.TermTwo} {
			period := period
			targets = append(targets, fillTarget{
				name: period,
				write: func(ctx context.Context, studentID string) error {
					return s.deps.Attendance.UpsertCredits(ctx, studentID, period, models.MaxAttendanceCredits)
				},
			})
		}
		return targets, nil
	case dto.FillWorkExperience:
		return []fillTarget{{
			name: "work experience",
			write: func(ctx context.Context, studentID string) error {
				return s.fillWorkExperience(ctx, year, studentID)
			},
		}}, nil
	default:
		subjects, err := s.deps.Subjects.List(ctx, models.SubjectFilter{AcademicYearID: year.ID, Type: models.SubjectTypeShort})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list short courses")
		}
		targets := make([]fillTarget, 0, len(subjects))
		for _, subject := range subjects {
			subject := subject
			targets = append(targets, fillTarget{
				name: subject.Name,
				write: func(ctx context.Context, studentID string) error {
					return s.deps.Enrollments.UpsertCredits(ctx, studentID, subject.ID, models.TermFullYear, subject.CreditValue)
				},
			})
		}
		return targets, nil
	}
}

func (s *BulkFillService) fillWorkExperience(ctx context.Context, year *models.AcademicYear, studentID string) error {
	existing, err := s.deps.WorkExperience.FindFirstByStudent(ctx, studentID)
	if err == nil {
		return s.deps.WorkExperience.UpdateCredits(ctx, existing.ID, models.MaxWorkExperienceCredits)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return s.deps.WorkExperience.Create(ctx, &models.WorkExperience{
		StudentID:     studentID,
		Business:      s.opts.PlaceholderBusiness,
		StartDate:     year.StartDate,
		EndDate:       year.EndDate,
		CreditsEarned: models.MaxWorkExperienceCredits,
	})
}
