package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	"github.com/noah-isme/ty-credit-api/internal/models"
	"github.com/noah-isme/ty-credit-api/internal/repository"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
)

type cohortStudentLister interface {
	ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.StudentDetail, error)
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.StudentDetail, error)
}

// CreditServiceDeps groups the collaborators of CreditService.
type CreditServiceDeps struct {
	Sources     []repository.CreditSource
	Students    studentLookup
	Cohorts     cohortStudentLister
	Years       yearLookup
	ClassGroups classGroupLookup
	Cache       *CacheService
	Metrics     *MetricsService
	CacheTTL    time.Duration
}

// CreditService aggregates credits across every credit source.
type CreditService struct {
	sources   []repository.CreditSource
	students  studentLookup
	cohorts   cohortStudentLister
	years     yearLookup
	groups    classGroupLookup
	cache     *CacheService
	metrics   *MetricsService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCreditService constructs the aggregator.
func NewCreditService(deps CreditServiceDeps, validate *validator.Validate, logger *zap.Logger) *CreditService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditService{
		sources:   deps.Sources,
		students:  deps.Students,
		cohorts:   deps.Cohorts,
		years:     deps.Years,
		groups:    deps.ClassGroups,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		cacheTTL:  deps.CacheTTL,
		validator: validate,
		logger:    logger,
	}
}

// CreditsBySource returns a student's credits split by source. Stored values
// are summed as-is; bounds are enforced when rows are written.
func (s *CreditService) CreditsBySource(ctx context.Context, studentID string) (*models.CreditBreakdown, error) {
	if _, err := s.loadStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.breakdown(ctx, studentID)
}

// TotalCredits returns the sum over every source.
func (s *CreditService) TotalCredits(ctx context.Context, studentID string) (int, error) {
	breakdown, err := s.CreditsBySource(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return breakdown.Total(), nil
}

// BatchTotals returns totals for many students with one query per source and
// chunk. Every requested id is present in the result.
func (s *CreditService) BatchTotals(ctx context.Context, req dto.BatchTotalsRequest) (map[string]int, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch totals payload")
	}
	start := time.Now()
	breakdowns, err := s.batchBreakdowns(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAggregation("batch", time.Since(start))

	totals := make(map[string]int, len(breakdowns))
	for id, breakdown := range breakdowns {
		totals[id] = breakdown.Total()
	}
	return totals, nil
}

// StudentSummary returns the breakdown, classification and progress toward Merit.
func (s *CreditService) StudentSummary(ctx context.Context, studentID string) (*dto.StudentCreditSummary, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	breakdown, err := s.breakdown(ctx, studentID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAggregation("single", time.Since(start))
	summary := summarize(*student, *breakdown)
	return &summary, nil
}

// CohortSummary classifies every student of a class group or academic year.
// Results are cached until the next credit write.
func (s *CreditService) CohortSummary(ctx context.Context, filter dto.CohortFilter) (*dto.CohortSummary, error) {
	kind, scopeID := filter.Kind()
	if scopeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classGroupId or academicYearId is required")
	}

	key := cohortCacheKey(kind, scopeID)
	var cached dto.CohortSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	students, err := s.cohortStudents(ctx, kind, scopeID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ids := make([]string, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}
	breakdowns, err := s.batchBreakdowns(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary := &dto.CohortSummary{
		Kind:     kind,
		ScopeID:  scopeID,
		Students: make([]dto.StudentCreditSummary, 0, len(students)),
		Tiers:    make(map[models.AchievementTier]int, len(achievementBands)),
	}
	for _, band := range achievementBands {
		summary.Tiers[band.tier] = 0
	}
	var sum int
	for _, student := range students {
		row := summarize(student, *breakdowns[student.ID])
		summary.Students = append(summary.Students, row)
		summary.Tiers[row.Achievement.Tier]++
		sum += row.Total
	}
	if len(students) > 0 {
		summary.Average = math.Round(float64(sum)/float64(len(students))*100) / 100
	}
	s.metrics.ObserveAggregation("cohort", time.Since(start))

	_ = s.cache.Set(ctx, key, summary, s.cacheTTL)
	return summary, nil
}

func (s *CreditService) breakdown(ctx context.Context, studentID string) (*models.CreditBreakdown, error) {
	breakdown := &models.CreditBreakdown{}
	for _, source := range s.sources {
		credits, err := source.CreditsForStudent(ctx, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate credits")
		}
		breakdown.Add(source.Source(), credits)
	}
	return breakdown, nil
}

func (s *CreditService) batchBreakdowns(ctx context.Context, studentIDs []string) (map[string]*models.CreditBreakdown, error) {
	result := make(map[string]*models.CreditBreakdown, len(studentIDs))
	unique := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		if _, seen := result[id]; seen {
			continue
		}
		result[id] = &models.CreditBreakdown{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return result, nil
	}

	for _, source := range s.sources {
		totals, err := source.CreditsForStudents(ctx, unique)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate credits")
		}
		for id, credits := range totals {
			if breakdown, ok := result[id]; ok {
				breakdown.Add(source.Source(), credits)
			}
		}
	}
	return result, nil
}

func (s *CreditService) cohortStudents(ctx context.Context, kind dto.CohortKind, scopeID string) ([]models.StudentDetail, error) {
	var (
		students []models.StudentDetail
		err      error
	)
	switch kind {
	case dto.CohortClassGroup:
		if _, err := s.groups.FindByID(ctx, scopeID); err != nil {
			return nil, notFoundOrInternal(err, "class group not found", "failed to load class group")
		}
		students, err = s.cohorts.ListByClassGroup(ctx, scopeID)
	default:
		if _, err := s.years.FindByID(ctx, scopeID); err != nil {
			return nil, notFoundOrInternal(err, "academic year not found", "failed to load academic year")
		}
		students, err = s.cohorts.ListByAcademicYear(ctx, scopeID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohort students")
	}
	return students, nil
}

func (s *CreditService) loadStudent(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "student not found", "failed to load student")
	}
	return student, nil
}

func summarize(student models.StudentDetail, breakdown models.CreditBreakdown) dto.StudentCreditSummary {
	total := breakdown.Total()
	return dto.StudentCreditSummary{
		StudentID:      student.ID,
		StudentName:    student.Name,
		ClassGroupID:   student.ClassGroupID,
		ClassGroupName: student.ClassGroupName,
		Credits:        breakdown,
		Total:          total,
		Achievement:    Classify(total),
		Progress:       ProgressPercentage(total, models.TierMerit),
	}
}

func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
