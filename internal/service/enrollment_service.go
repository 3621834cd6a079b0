package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Student, error)
}

type enrollmentSubjectReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Subject, error)
}

type enrollmentGradeStore interface {
	Find(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (*models.GradeRecord, error)
	Create(ctx context.Context, q sqlx.ExtContext, record *models.GradeRecord) error
	Update(ctx context.Context, q sqlx.ExtContext, record *models.GradeRecord) error
	ListSheet(ctx context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error)
}

type enrollmentTrasher interface {
	MoveToTrash(ctx context.Context, studentID, subject, actor string) (*models.TrashEntry, error)
}

// EnrollmentService manages the enrollment of students in subjects and their grades.
type EnrollmentService struct {
	tx        txRunner
	students  enrollmentStudentReader
	subjects  enrollmentSubjectReader
	grades    enrollmentGradeStore
	trash     enrollmentTrasher
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(tx txRunner, students enrollmentStudentReader, subjects enrollmentSubjectReader, grades enrollmentGradeStore, trash enrollmentTrasher, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		tx:        tx,
		students:  students,
		subjects:  subjects,
		grades:    grades,
		trash:     trash,
		cache:     invalidatorOrNoop(cache),
		validator: validatorOrDefault(validate),
		logger:    logger,
	}
}

// Enroll creates an ungraded enrollment with no component scores.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, subject string) (*models.GradeRecord, error) {
	var record *models.GradeRecord
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.students.FindByID(ctx, q, studentID); err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		if _, err := s.subjects.FindByName(ctx, q, subject); err != nil {
			return lookupError(err, "subject not found", "failed to load subject")
		}
		if _, err := s.grades.Find(ctx, q, studentID, subject); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s is already enrolled in %s", studentID, subject))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check enrollment")
		}
		record = &models.GradeRecord{StudentID: studentID, Subject: subject, Status: models.GradeStatusUngraded}
		if err := s.grades.Create(ctx, q, record); err != nil {
			return appErrors.Internal(err, "failed to create enrollment")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to enroll student")
	}
	s.cache.InvalidateDashboard(ctx)
	return record, nil
}

// UpdateGrades merges the supplied components into the stored enrollment and
// recomputes the final grade and status. Nothing is written when validation fails.
func (s *EnrollmentService) UpdateGrades(ctx context.Context, studentID, subject string, req dto.UpdateGradesRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	update := req.Components()
	if err := ValidateScores(update); err != nil {
		return nil, err
	}

	var record *models.GradeRecord
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		stored, err := s.grades.Find(ctx, q, studentID, subject)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		merged := MergeComponents(stored.GradeComponents, update)
		final, status := ComputeFinal(merged)
		rounded := RoundGrade(final)

		stored.GradeComponents = RoundComponents(merged)
		stored.FinalGrade = &rounded
		stored.Status = status
		if err := s.grades.Update(ctx, q, stored); err != nil {
			return appErrors.Internal(err, "failed to save grades")
		}
		record = stored
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to update grades")
	}
	s.cache.InvalidateDashboard(ctx)
	return record, nil
}

// SetStatus changes the standing of an enrollment. Dropping zeroes every
// component and the final grade. Leaving Dropped only rewrites the status.
func (s *EnrollmentService) SetStatus(ctx context.Context, studentID, subject string, req dto.SetStatusRequest) (*dto.StatusChangeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	if !req.Status.Settable() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Passing, Failing or Dropped")
	}

	result := &dto.StatusChangeResult{StudentID: studentID, Subject: subject, Status: req.Status}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		stored, err := s.grades.Find(ctx, q, studentID, subject)
		if err != nil {
			return lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		if stored.Status == req.Status {
			result.Message = fmt.Sprintf("status is already %s", req.Status)
			return nil
		}
		if req.Status == models.GradeStatusDropped {
			zero := 0.0
			stored.GradeComponents = zeroedComponents()
			stored.FinalGrade = &zero
		}
		stored.Status = req.Status
		if err := s.grades.Update(ctx, q, stored); err != nil {
			return appErrors.Internal(err, "failed to save status")
		}
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to set status")
	}
	if result.Changed {
		s.cache.InvalidateDashboard(ctx)
		s.logger.Info("enrollment status changed",
			zap.String("student_id", studentID),
			zap.String("subject", subject),
			zap.String("status", string(req.Status)))
	}
	return result, nil
}

// Unenroll moves the enrollment to the trash bin.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, subject string, session models.Session) (*models.TrashEntry, error) {
	return s.trash.MoveToTrash(ctx, studentID, subject, session.Actor())
}

// ListGrades returns the grade sheet of a subject.
func (s *EnrollmentService) ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error) {
	if filter.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	if _, err := s.subjects.FindByName(ctx, nil, filter.Subject); err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}
	rows, err := s.grades.ListSheet(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	return rows, nil
}

// GetGrade returns one enrollment.
func (s *EnrollmentService) GetGrade(ctx context.Context, studentID, subject string) (*models.GradeRecord, error) {
	record, err := s.grades.Find(ctx, nil, studentID, subject)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	return record, nil
}
