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

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Student, error)
	NextID(ctx context.Context, q sqlx.ExtContext) (string, error)
	Create(ctx context.Context, q sqlx.ExtContext, student *models.Student) error
}

type studentSectionReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Section, error)
}

type studentSubjectReader interface {
	ListStudentSubjects(ctx context.Context, studentID string) ([]models.StudentSubject, error)
}

// StudentService registers students and lists the roster.
type StudentService struct {
	tx        txRunner
	students  studentStore
	sections  studentSectionReader
	grades    studentSubjectReader
	cache     dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(tx txRunner, students studentStore, sections studentSectionReader, grades studentSubjectReader, cache dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		tx:        tx,
		students:  students,
		sections:  sections,
		grades:    grades,
		cache:     invalidatorOrNoop(cache),
		validator: validatorOrDefault(validate),
		logger:    logger,
	}
}

// List returns students matching the filter ordered by name.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// ListSubjects returns every subject the student is enrolled in.
func (s *StudentService) ListSubjects(ctx context.Context, id string) ([]models.StudentSubject, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	subjects, err := s.grades.ListStudentSubjects(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list student subjects")
	}
	return subjects, nil
}

// Create registers a student under the next free S### id. The section must
// exist and carry the same grade level.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	var student *models.Student
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		section, err := s.sections.FindByName(ctx, q, req.Section)
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrIntegrity, fmt.Sprintf("section %q does not exist", req.Section))
		} else if err != nil {
			return appErrors.Internal(err, "failed to load section")
		}
		if section.GradeLevel != req.GradeLevel {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("section %q is for grade %d", section.Name, section.GradeLevel))
		}
		id, err := s.students.NextID(ctx, q)
		if err != nil {
			return appErrors.Internal(err, "failed to allocate student id")
		}
		student = &models.Student{ID: id, Name: req.Name, GradeLevel: req.GradeLevel, Section: section.Name}
		if err := s.students.Create(ctx, q, student); err != nil {
			return appErrors.Internal(err, "failed to create student")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to create student")
	}
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("section", student.Section))
	return student, nil
}
