package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
	"github.com/noah-isme/class-record-api/pkg/export"
)

// ExportFormat selects the renderer for a class record export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type exportGradeReader interface {
	ListSheet(ctx context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error)
}

type exportAttendanceReader interface {
	ListSheet(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders grade and attendance sheets.
type ExportService struct {
	grades     exportGradeReader
	attendance exportAttendanceReader
	subjects   enrollmentSubjectReader
	csv        datasetRenderer
	pdf        datasetRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the CSV and PDF exporters.
func NewExportService(grades exportGradeReader, attendance exportAttendanceReader, subjects enrollmentSubjectReader, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		grades:     grades,
		attendance: attendance,
		subjects:   subjects,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ParseExportFormat normalises a format query value. Empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// GradeSheet renders every enrollment of the subject with its components,
// final grade and status.
func (s *ExportService) GradeSheet(ctx context.Context, subject, section string, format ExportFormat) (*ExportFile, error) {
	if _, err := s.subjects.FindByName(ctx, nil, subject); err != nil {
		return nil, lookupError(err, fmt.Sprintf("subject %q not found", subject), "failed to load subject")
	}
	rows, err := s.grades.ListSheet(ctx, models.GradeFilter{Subject: subject, Section: section})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grade sheet")
	}

	headers := []string{"Student ID", "Name", "Section", "Written Works", "Quizzes", "Activities", "Performance Tasks", "Final Grade", "Status"}
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, map[string]string{
			"Student ID":        row.StudentID,
			"Name":              row.StudentName,
			"Section":           row.Section,
			"Written Works":     formatScore(row.WrittenWorks),
			"Quizzes":           formatScore(row.Quizzes),
			"Activities":        formatScore(row.Activities),
			"Performance Tasks": formatScore(row.PerformanceTasks),
			"Final Grade":       formatScore(row.FinalGrade),
			"Status":            string(row.Status),
		})
	}
	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s class record", subject),
		Headers: headers,
		Rows:    data,
		Notes: []string{
			fmt.Sprintf("Each recorded component weighs %.0f%%; missing components are excluded", componentWeight*100),
			fmt.Sprintf("Passing grade: %.1f", PassingThreshold),
			fmt.Sprintf("Generated %s", s.now().Format(time.RFC3339)),
		},
	}
	return s.render(dataset, format, "grades_"+subject+suffix(section))
}

// AttendanceSheet renders the subject's roster with the mark held for one date.
func (s *ExportService) AttendanceSheet(ctx context.Context, subject, date, section string, format ExportFormat) (*ExportFile, error) {
	if _, err := time.Parse(models.AttendanceDateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	if _, err := s.subjects.FindByName(ctx, nil, subject); err != nil {
		return nil, lookupError(err, fmt.Sprintf("subject %q not found", subject), "failed to load subject")
	}
	rows, err := s.attendance.ListSheet(ctx, models.AttendanceFilter{Subject: subject, Date: date, Section: section})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance sheet")
	}

	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		mark := ""
		if row.Status != nil {
			mark = string(*row.Status)
		}
		data = append(data, map[string]string{
			"Student ID": row.StudentID,
			"Name":       row.StudentName,
			"Section":    row.Section,
			"Standing":   string(row.GradeStatus),
			"Mark":       mark,
		})
	}
	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s attendance %s", subject, date),
		Headers: []string{"Student ID", "Name", "Section", "Standing", "Mark"},
		Rows:    data,
	}
	return s.render(dataset, format, "attendance_"+subject+"_"+date+suffix(section))
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, base string) (*ExportFile, error) {
	var (
		renderer    datasetRenderer
		contentType string
	)
	switch format {
	case ExportFormatCSV, "":
		format, renderer, contentType = ExportFormatCSV, s.csv, "text/csv"
	case ExportFormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	filename := fmt.Sprintf("%s.%s", sanitizeFilename(base), format)
	s.logger.Debug("export rendered", zap.String("filename", filename), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{Filename: filename, ContentType: contentType, Data: payload}, nil
}

func suffix(section string) string {
	if section == "" {
		return ""
	}
	return "_" + section
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
