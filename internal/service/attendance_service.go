package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

type attendanceGradeReader interface {
	Find(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (*models.GradeRecord, error)
}

type attendanceStore interface {
	Upsert(ctx context.Context, q sqlx.ExtContext, record *models.Attendance) error
	ListSheet(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error)
}

type attendanceSubjectReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Subject, error)
}

// Reasons reported for students skipped by BulkMark.
const (
	SkipReasonNotEnrolled = "not enrolled"
	SkipReasonDropped     = "dropped"
)

// AttendanceService records one attendance mark per student, subject and day.
type AttendanceService struct {
	tx         txRunner
	grades     attendanceGradeReader
	attendance attendanceStore
	subjects   attendanceSubjectReader
	cache      dashboardInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(tx txRunner, grades attendanceGradeReader, attendance attendanceStore, subjects attendanceSubjectReader, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		tx:         tx,
		grades:     grades,
		attendance: attendance,
		subjects:   subjects,
		cache:      invalidatorOrNoop(cache),
		validator:  validatorOrDefault(validate),
		logger:     logger,
	}
}

// Mark records a student's attendance for a day. Marking the same status
// twice leaves a single row. Dropped enrollments cannot be marked.
func (s *AttendanceService) Mark(ctx context.Context, subject string, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	record := &models.Attendance{
		StudentID: req.StudentID,
		Subject:   subject,
		Date:      req.Date,
		Status:    models.AttendanceStatus(strings.ToUpper(string(req.Status))),
	}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if reason, err := s.checkMarkable(ctx, q, req.StudentID, subject); err != nil {
			return err
		} else if reason == SkipReasonNotEnrolled {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s is not enrolled in %s", req.StudentID, subject))
		} else if reason == SkipReasonDropped {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("student %s has dropped %s", req.StudentID, subject))
		}
		if err := s.attendance.Upsert(ctx, q, record); err != nil {
			return appErrors.Internal(err, "failed to record attendance")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to record attendance")
	}
	s.cache.InvalidateDashboard(ctx)
	return record, nil
}

// BulkMark applies one status to several students in a single transaction.
// Students who are not enrolled or have dropped are skipped and reported.
func (s *AttendanceService) BulkMark(ctx context.Context, subject string, req dto.BulkMarkRequest) (*dto.BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk attendance payload")
	}
	status := models.AttendanceStatus(strings.ToUpper(string(req.Status)))
	result := &dto.BulkMarkResult{
		Subject: subject,
		Date:    req.Date,
		Status:  string(status),
		Marked:  []string{},
		Skipped: []dto.SkippedStudent{},
	}

	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		seen := make(map[string]struct{}, len(req.StudentIDs))
		for _, studentID := range req.StudentIDs {
			if _, dup := seen[studentID]; dup {
				continue
			}
			seen[studentID] = struct{}{}

			reason, err := s.checkMarkable(ctx, q, studentID, subject)
			if err != nil {
				return err
			}
			if reason != "" {
				result.Skipped = append(result.Skipped, dto.SkippedStudent{StudentID: studentID, Reason: reason})
				continue
			}
			if err := s.attendance.Upsert(ctx, q, &models.Attendance{StudentID: studentID, Subject: subject, Date: req.Date, Status: status}); err != nil {
				return appErrors.Internal(err, "failed to record attendance")
			}
			result.Marked = append(result.Marked, studentID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to record attendance")
	}
	if len(result.Marked) > 0 {
		s.cache.InvalidateDashboard(ctx)
	}
	s.logger.Debug("bulk attendance recorded",
		zap.String("subject", subject),
		zap.String("date", req.Date),
		zap.Int("marked", len(result.Marked)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// List returns the attendance sheet of a subject for one day.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error) {
	if err := s.validator.Var(filter.Date, "required,datetime=2006-01-02"); err != nil {
		return nil, validationError(err, "date must be formatted YYYY-MM-DD")
	}
	if _, err := s.subjects.FindByName(ctx, nil, filter.Subject); err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}
	rows, err := s.attendance.ListSheet(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	return rows, nil
}

// checkMarkable returns a skip reason, or an empty string when the student can be marked.
func (s *AttendanceService) checkMarkable(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (string, error) {
	record, err := s.grades.Find(ctx, q, studentID, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SkipReasonNotEnrolled, nil
		}
		return "", appErrors.Internal(err, "failed to load enrollment")
	}
	if record.Status == models.GradeStatusDropped {
		return SkipReasonDropped, nil
	}
	return "", nil
}
