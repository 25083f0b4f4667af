package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ty-credit-api/internal/dto"
	appErrors "github.com/noah-isme/ty-credit-api/pkg/errors"
	"github.com/noah-isme/ty-credit-api/pkg/export"
)

// Supported cohort report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type cohortSummarizer interface {
	CohortSummary(ctx context.Context, filter dto.CohortFilter) (*dto.CohortSummary, error)
}

var cohortReportHeaders = []string{"Student", "Class", "Subjects", "Work Experience", "Portfolio", "Attendance", "Total", "Tier", "Progress %"}

// ReportOptions configures cohort exports.
type ReportOptions struct {
	Enabled bool
	Title   string
}

// ReportService renders cohort credit progress reports.
type ReportService struct {
	credits cohortSummarizer
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	opts    ReportOptions
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs the service.
func NewReportService(credits cohortSummarizer, opts ReportOptions, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "Credit Report"
	}
	return &ReportService{
		credits: credits,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// ExportCohort renders the cohort summary as CSV or PDF.
func (s *ReportService) ExportCohort(ctx context.Context, filter dto.CohortFilter, format string) (*dto.ExportFile, error) {
	if !s.opts.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "reports are disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ReportFormatCSV
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	summary, err := s.credits.CohortSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := cohortDataset(summary)
	stamp := s.now().UTC()
	filename := fmt.Sprintf("credits-%s-%s-%s.%s", summary.Kind, summary.ScopeID, stamp.Format("20060102"), format)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case ReportFormatPDF:
		subtitle := fmt.Sprintf("%s %s, %d students, average %.2f, generated %s",
			strings.ReplaceAll(string(summary.Kind), "_", " "), summary.ScopeID, len(summary.Students), summary.Average, stamp.Format("2006-01-02"))
		body, err = s.pdf.Render(data, export.PDFOptions{Title: s.opts.Title, Subtitle: subtitle})
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.logger.Info("cohort report exported",
		zap.String("kind", string(summary.Kind)),
		zap.String("scope_id", summary.ScopeID),
		zap.String("format", format),
		zap.Int("students", len(summary.Students)),
	)
	return &dto.ExportFile{Filename: filename, ContentType: contentType, Body: body}, nil
}

func cohortDataset(summary *dto.CohortSummary) export.Dataset {
	data := export.Dataset{
		Headers: cohortReportHeaders,
		Numeric: map[string]bool{"Subjects": true, "Work Experience": true, "Portfolio": true, "Attendance": true, "Total": true, "Progress %": true},
	}
	for _, row := range summary.Students {
		class := ""
		if row.ClassGroupName != nil {
			class = *row.ClassGroupName
		}
		data.AddRow(
			row.StudentName,
			class,
			strconv.Itoa(row.Credits.Subjects),
			strconv.Itoa(row.Credits.WorkExperience),
			strconv.Itoa(row.Credits.Portfolio),
			strconv.Itoa(row.Credits.Attendance),
			strconv.Itoa(row.Total),
			string(row.Achievement.Tier),
			strconv.Itoa(row.Progress),
		)
	}
	return data
}
