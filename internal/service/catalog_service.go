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

type catalogSubjectStore interface {
	List(ctx context.Context) ([]models.Subject, error)
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Subject, error)
	Create(ctx context.Context, q sqlx.ExtContext, subject *models.Subject) error
	Delete(ctx context.Context, q sqlx.ExtContext, name string) (int64, error)
}

type catalogSectionStore interface {
	ListWithCounts(ctx context.Context) ([]models.SectionSummary, error)
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Section, error)
	Create(ctx context.Context, q sqlx.ExtContext, section *models.Section) error
	Delete(ctx context.Context, q sqlx.ExtContext, name string) (int64, error)
}

type catalogGradeStore interface {
	ListByStudent(ctx context.Context, q sqlx.ExtContext, studentID string) ([]models.GradeRecord, error)
	DeleteBySubject(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error)
}

type catalogAttendanceStore interface {
	DeleteBySubject(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error)
}

type catalogStudentStore interface {
	ListBySection(ctx context.Context, q sqlx.ExtContext, section string) ([]models.Student, error)
	Delete(ctx context.Context, q sqlx.ExtContext, id string) (int64, error)
}

type catalogTeacherStore interface {
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Teacher, error)
	AddSubject(ctx context.Context, q sqlx.ExtContext, teacherID, subject string) (bool, error)
	RemoveSubject(ctx context.Context, q sqlx.ExtContext, teacherID, subject string) (bool, error)
	DeleteSubjectLinks(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error)
}

type sectionTrasher interface {
	TrashWithin(ctx context.Context, q sqlx.ExtContext, student models.Student, subject, actor string) (*models.TrashEntry, error)
}

// CatalogService manages subjects, sections and teacher-subject assignments.
type CatalogService struct {
	tx         txRunner
	subjects   catalogSubjectStore
	sections   catalogSectionStore
	students   catalogStudentStore
	grades     catalogGradeStore
	attendance catalogAttendanceStore
	teachers   catalogTeacherStore
	trash      sectionTrasher
	cache      dashboardInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// CatalogServiceDeps bundles the collaborators of CatalogService.
type CatalogServiceDeps struct {
	Tx         txRunner
	Subjects   catalogSubjectStore
	Sections   catalogSectionStore
	Students   catalogStudentStore
	Grades     catalogGradeStore
	Attendance catalogAttendanceStore
	Teachers   catalogTeacherStore
	Trash      sectionTrasher
	Cache      dashboardInvalidator
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(deps CatalogServiceDeps) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		tx:         deps.Tx,
		subjects:   deps.Subjects,
		sections:   deps.Sections,
		students:   deps.Students,
		grades:     deps.Grades,
		attendance: deps.Attendance,
		teachers:   deps.Teachers,
		trash:      deps.Trash,
		cache:      invalidatorOrNoop(deps.Cache),
		metrics:    deps.Metrics,
		validator:  validatorOrDefault(deps.Validator),
		logger:     logger,
	}
}

// ListSubjects returns the subject catalog.
func (s *CatalogService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	return subjects, nil
}

// AddSubject creates a subject with a unique name.
func (s *CatalogService) AddSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	subject := &models.Subject{Name: req.Name}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.subjects.FindByName(ctx, q, req.Name); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("subject %q already exists", req.Name))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check subject")
		}
		if err := s.subjects.Create(ctx, q, subject); err != nil {
			return appErrors.Internal(err, "failed to create subject")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to create subject")
	}
	s.cache.InvalidateDashboard(ctx)
	return subject, nil
}

// DeleteSubject removes a subject together with its grades, attendance and
// teacher links. Trash entries recorded for the subject are left untouched.
func (s *CatalogService) DeleteSubject(ctx context.Context, name string) (*dto.SubjectDeleteResult, error) {
	result := &dto.SubjectDeleteResult{Subject: name}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.subjects.FindByName(ctx, q, name); err != nil {
			return lookupError(err, "subject not found", "failed to load subject")
		}
		var err error
		if result.GradesRemoved, err = s.grades.DeleteBySubject(ctx, q, name); err != nil {
			return appErrors.Internal(err, "failed to delete subject grades")
		}
		if result.AttendanceRemoved, err = s.attendance.DeleteBySubject(ctx, q, name); err != nil {
			return appErrors.Internal(err, "failed to delete subject attendance")
		}
		if result.TeacherLinks, err = s.teachers.DeleteSubjectLinks(ctx, q, name); err != nil {
			return appErrors.Internal(err, "failed to unlink subject from teachers")
		}
		if _, err := s.subjects.Delete(ctx, q, name); err != nil {
			return appErrors.Internal(err, "failed to delete subject")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to delete subject")
	}
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("subject deleted",
		zap.String("subject", name),
		zap.Int64("grades_removed", result.GradesRemoved),
		zap.Int64("attendance_removed", result.AttendanceRemoved))
	return result, nil
}

// ListSections returns sections with their live student counts.
func (s *CatalogService) ListSections(ctx context.Context) ([]models.SectionSummary, error) {
	sections, err := s.sections.ListWithCounts(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sections")
	}
	return sections, nil
}

// AddSection creates a section named "Grade {level} {label}".
func (s *CatalogService) AddSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error) {
	req.Label = strings.TrimSpace(req.Label)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid section payload")
	}
	section := &models.Section{Name: models.SectionName(req.GradeLevel, req.Label), GradeLevel: req.GradeLevel}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.sections.FindByName(ctx, q, section.Name); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("section %q already exists", section.Name))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check section")
		}
		if err := s.sections.Create(ctx, q, section); err != nil {
			return appErrors.Internal(err, "failed to create section")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to create section")
	}
	s.cache.InvalidateDashboard(ctx)
	return section, nil
}

// DeleteSection trashes every enrollment of every student in the section,
// removes those students and then the section itself. A student without
// enrollments still gets a whole-student trash entry so it can be restored.
func (s *CatalogService) DeleteSection(ctx context.Context, name string, session models.Session) (*dto.SectionDeleteResult, error) {
	result := &dto.SectionDeleteResult{Section: name}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.sections.FindByName(ctx, q, name); err != nil {
			return lookupError(err, "section not found", "failed to load section")
		}
		students, err := s.students.ListBySection(ctx, q, name)
		if err != nil {
			return appErrors.Internal(err, "failed to list section students")
		}
		for _, student := range students {
			enrollments, err := s.grades.ListByStudent(ctx, q, student.ID)
			if err != nil {
				return appErrors.Internal(err, "failed to list enrollments")
			}
			subjects := make([]string, 0, len(enrollments))
			for _, e := range enrollments {
				subjects = append(subjects, e.Subject)
			}
			if len(subjects) == 0 {
				subjects = append(subjects, "")
			}
			for _, subject := range subjects {
				if _, err := s.trash.TrashWithin(ctx, q, student, subject, session.Actor()); err != nil {
					return err
				}
				result.TrashEntries++
			}
			if _, err := s.students.Delete(ctx, q, student.ID); err != nil {
				return appErrors.Internal(err, "failed to remove student")
			}
			result.StudentsRemoved++
		}
		if _, err := s.sections.Delete(ctx, q, name); err != nil {
			return appErrors.Internal(err, "failed to delete section")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to delete section")
	}
	s.metrics.RecordTrashOperation(TrashOpMove, result.TrashEntries)
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("section deleted",
		zap.String("section", name),
		zap.Int("students_removed", result.StudentsRemoved),
		zap.Int("trash_entries", result.TrashEntries),
		zap.String("actor", session.Actor()))
	return result, nil
}

// AssignSubjectToTeacher adds a subject to a teacher's set. Changed is false
// when the teacher already had it.
func (s *CatalogService) AssignSubjectToTeacher(ctx context.Context, teacherID, subject string) (*dto.AssignmentResult, error) {
	result := &dto.AssignmentResult{TeacherID: teacherID, Subject: subject}
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		if _, err := s.teachers.FindByID(ctx, q, teacherID); err != nil {
			return lookupError(err, "teacher not found", "failed to load teacher")
		}
		if _, err := s.subjects.FindByName(ctx, q, subject); err != nil {
			return lookupError(err, "subject not found", "failed to load subject")
		}
		changed, err := s.teachers.AddSubject(ctx, q, teacherID, subject)
		if err != nil {
			return appErrors.Internal(err, "failed to assign subject")
		}
		result.Changed = changed
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to assign subject")
	}
	return result, nil
}

// RemoveSubjectFromTeacher removes a subject from a teacher's set. Changed is
// false when the teacher did not have it.
func (s *CatalogService) RemoveSubjectFromTeacher(ctx context.Context, teacherID, subject string) (*dto.AssignmentResult, error) {
	if _, err := s.teachers.FindByID(ctx, nil, teacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	changed, err := s.teachers.RemoveSubject(ctx, nil, teacherID, subject)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to remove subject")
	}
	return &dto.AssignmentResult{TeacherID: teacherID, Subject: subject, Changed: changed}, nil
}
