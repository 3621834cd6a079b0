package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

type trashStudentStore interface {
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Student, error)
	NextID(ctx context.Context, q sqlx.ExtContext) (string, error)
	Create(ctx context.Context, q sqlx.ExtContext, student *models.Student) error
}

type trashSectionReader interface {
	FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Section, error)
}

type trashGradeStore interface {
	Find(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (*models.GradeRecord, error)
	ListByStudent(ctx context.Context, q sqlx.ExtContext, studentID string) ([]models.GradeRecord, error)
	Create(ctx context.Context, q sqlx.ExtContext, record *models.GradeRecord) error
	Delete(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (int64, error)
}

type trashAttendanceStore interface {
	ListByStudent(ctx context.Context, q sqlx.ExtContext, studentID string) ([]models.Attendance, error)
	Upsert(ctx context.Context, q sqlx.ExtContext, record *models.Attendance) error
	Delete(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (int64, error)
}

type trashStore interface {
	Create(ctx context.Context, q sqlx.ExtContext, entry *models.TrashEntry) error
	FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.TrashEntry, error)
	List(ctx context.Context) ([]models.TrashEntry, error)
	Delete(ctx context.Context, q sqlx.ExtContext, id string) (int64, error)
	DeleteAll(ctx context.Context, q sqlx.ExtContext) (int64, error)
}

// TrashService moves enrollments to the trash bin and brings them back.
//
// A trash entry backs up every grade and attendance row of the student, across
// all subjects, while only the rows of DeletedFromSubject are removed. Restore
// filters the backup back down to that subject.
type TrashService struct {
	tx         txRunner
	students   trashStudentStore
	sections   trashSectionReader
	grades     trashGradeStore
	attendance trashAttendanceStore
	trash      trashStore
	cache      dashboardInvalidator
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// TrashServiceDeps bundles the collaborators of TrashService.
type TrashServiceDeps struct {
	Tx         txRunner
	Students   trashStudentStore
	Sections   trashSectionReader
	Grades     trashGradeStore
	Attendance trashAttendanceStore
	Trash      trashStore
	Cache      dashboardInvalidator
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// NewTrashService constructs a TrashService.
func NewTrashService(deps TrashServiceDeps) *TrashService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrashService{
		tx:         deps.Tx,
		students:   deps.Students,
		sections:   deps.Sections,
		grades:     deps.Grades,
		attendance: deps.Attendance,
		trash:      deps.Trash,
		cache:      invalidatorOrNoop(deps.Cache),
		metrics:    deps.Metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MoveToTrash snapshots the student and removes their enrollment in subject.
// Nothing is deleted when the student or the enrollment does not exist.
func (s *TrashService) MoveToTrash(ctx context.Context, studentID, subject, actor string) (*models.TrashEntry, error) {
	var entry *models.TrashEntry
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		student, err := s.students.FindByID(ctx, q, studentID)
		if err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
		if _, err := s.grades.Find(ctx, q, studentID, subject); err != nil {
			return lookupError(err, fmt.Sprintf("student %s is not enrolled in %s", studentID, subject), "failed to load enrollment")
		}
		entry, err = s.TrashWithin(ctx, q, *student, subject, actor)
		return err
	})
	if err != nil {
		return nil, passThrough(err, "failed to move enrollment to trash")
	}

	s.metrics.RecordTrashOperation(TrashOpMove, 1)
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("enrollment moved to trash",
		zap.String("trash_id", entry.ID),
		zap.String("student_id", studentID),
		zap.String("subject", subject),
		zap.String("actor", actor))
	return entry, nil
}

// TrashWithin writes a trash entry for student using the caller's transaction.
// An empty subject records a whole-student snapshot and deletes no rows.
func (s *TrashService) TrashWithin(ctx context.Context, q sqlx.ExtContext, student models.Student, subject, actor string) (*models.TrashEntry, error) {
	grades, err := s.grades.ListByStudent(ctx, q, student.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to back up grades")
	}
	marks, err := s.attendance.ListByStudent(ctx, q, student.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to back up attendance")
	}

	gradesBackup, attendanceBackup, err := encodeBackups(grades, marks)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode trash backup")
	}

	entry := &models.TrashEntry{
		ID:                 fmt.Sprintf("TRASH-%s-%s", student.ID, uuid.NewString()),
		OriginalID:         student.ID,
		Name:               student.Name,
		GradeLevel:         student.GradeLevel,
		Section:            student.Section,
		GradesBackup:       gradesBackup,
		AttendanceBackup:   attendanceBackup,
		DeletedFromSubject: subject,
		DeletedAt:          s.now(),
		DeletedBy:          actor,
	}
	if err := s.trash.Create(ctx, q, entry); err != nil {
		return nil, appErrors.Internal(err, "failed to create trash entry")
	}

	if subject == "" {
		return entry, nil
	}
	if _, err := s.grades.Delete(ctx, q, student.ID, subject); err != nil {
		return nil, appErrors.Internal(err, "failed to remove enrollment")
	}
	if _, err := s.attendance.Delete(ctx, q, student.ID, subject); err != nil {
		return nil, appErrors.Internal(err, "failed to remove attendance")
	}
	return entry, nil
}

// Restore brings a trashed enrollment back and removes the trash entry.
//
// The original id is reused when it is free, or when the student holding it
// has the snapshot's name. A different holder gets the enrollment restored
// under a newly minted id, reported through IDChanged.
func (s *TrashService) Restore(ctx context.Context, trashID string) (*dto.RestoreResult, error) {
	var result *dto.RestoreResult
	err := s.tx.WithinTx(ctx, func(q sqlx.ExtContext) error {
		entry, err := s.trash.FindByID(ctx, q, trashID)
		if err != nil {
			return lookupError(err, "trash entry not found", "failed to load trash entry")
		}
		grades, marks, err := decodeBackups(entry)
		if err != nil {
			return appErrors.Internal(err, "failed to decode trash backup")
		}

		targetID, createStudent, err := s.resolveTarget(ctx, q, entry)
		if err != nil {
			return err
		}
		if createStudent {
			if _, err := s.sections.FindByName(ctx, q, entry.Section); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrIntegrity,
						fmt.Sprintf("section %q no longer exists; add section %q for grade %d again to restore this entry", entry.Section, entry.Section, entry.GradeLevel))
				}
				return appErrors.Internal(err, "failed to load section")
			}
			if err := s.students.Create(ctx, q, &models.Student{
				ID:         targetID,
				Name:       entry.Name,
				GradeLevel: entry.GradeLevel,
				Section:    entry.Section,
			}); err != nil {
				return appErrors.Internal(err, "failed to recreate student")
			}
		}

		result = &dto.RestoreResult{
			TrashID:          entry.ID,
			OriginalID:       entry.OriginalID,
			StudentID:        targetID,
			Subject:          entry.DeletedFromSubject,
			IDChanged:        targetID != entry.OriginalID,
			StudentRecreated: createStudent,
		}

		for _, g := range grades {
			if g.Subject != entry.DeletedFromSubject {
				continue
			}
			if _, err := s.grades.Find(ctx, q, targetID, g.Subject); err == nil {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s is already enrolled in %s", targetID, g.Subject))
			} else if !errors.Is(err, sql.ErrNoRows) {
				return appErrors.Internal(err, "failed to check enrollment")
			}
			if err := s.grades.Create(ctx, q, &models.GradeRecord{
				StudentID: targetID,
				Subject:   g.Subject,
				GradeComponents: models.GradeComponents{
					WrittenWorks:     g.WrittenWorks,
					Quizzes:          g.Quizzes,
					Activities:       g.Activities,
					PerformanceTasks: g.PerformanceTasks,
				},
				FinalGrade: g.FinalGrade,
				Status:     g.Status,
			}); err != nil {
				return appErrors.Internal(err, "failed to restore grades")
			}
			result.GradesRestored++
		}

		for _, a := range marks {
			if a.Subject != entry.DeletedFromSubject {
				continue
			}
			if err := s.attendance.Upsert(ctx, q, &models.Attendance{
				StudentID: targetID,
				Subject:   a.Subject,
				Date:      a.Date,
				Status:    a.Status,
			}); err != nil {
				return appErrors.Internal(err, "failed to restore attendance")
			}
			result.AttendanceRestored++
		}

		if _, err := s.trash.Delete(ctx, q, entry.ID); err != nil {
			return appErrors.Internal(err, "failed to remove trash entry")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to restore trash entry")
	}

	s.metrics.RecordTrashOperation(TrashOpRestore, 1)
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("trash entry restored",
		zap.String("trash_id", result.TrashID),
		zap.String("original_id", result.OriginalID),
		zap.String("student_id", result.StudentID),
		zap.Bool("id_changed", result.IDChanged))
	return result, nil
}

// resolveTarget picks the student id to restore under and whether a student row must be inserted.
func (s *TrashService) resolveTarget(ctx context.Context, q sqlx.ExtContext, entry *models.TrashEntry) (string, bool, error) {
	holder, err := s.students.FindByID(ctx, q, entry.OriginalID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return entry.OriginalID, true, nil
	case err != nil:
		return "", false, appErrors.Internal(err, "failed to load student")
	case holder.Name == entry.Name:
		return entry.OriginalID, false, nil
	}
	nextID, err := s.students.NextID(ctx, q)
	if err != nil {
		return "", false, appErrors.Internal(err, "failed to allocate student id")
	}
	return nextID, true, nil
}

// List returns trash entries, newest first.
func (s *TrashService) List(ctx context.Context) ([]models.TrashEntry, error) {
	entries, err := s.trash.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list trash")
	}
	return entries, nil
}

// Get returns a trash entry with its backups decoded.
func (s *TrashService) Get(ctx context.Context, trashID string) (*dto.TrashDetail, error) {
	entry, err := s.trash.FindByID(ctx, nil, trashID)
	if err != nil {
		return nil, lookupError(err, "trash entry not found", "failed to load trash entry")
	}
	grades, marks, err := decodeBackups(entry)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to decode trash backup")
	}
	return &dto.TrashDetail{TrashEntry: *entry, Grades: grades, Attendance: marks}, nil
}

// PurgeOne permanently deletes one trash entry.
func (s *TrashService) PurgeOne(ctx context.Context, trashID string) error {
	affected, err := s.trash.Delete(ctx, nil, trashID)
	if err != nil {
		return appErrors.Internal(err, "failed to purge trash entry")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "trash entry not found")
	}
	s.metrics.RecordTrashOperation(TrashOpPurge, 1)
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("trash entry purged", zap.String("trash_id", trashID))
	return nil
}

// PurgeAll permanently empties the trash and returns how many entries were removed.
func (s *TrashService) PurgeAll(ctx context.Context) (*dto.PurgeResult, error) {
	purged, err := s.trash.DeleteAll(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to empty trash")
	}
	s.metrics.RecordTrashOperation(TrashOpPurgeAll, int(purged))
	s.cache.InvalidateDashboard(ctx)
	s.logger.Info("trash emptied", zap.Int64("purged", purged))
	return &dto.PurgeResult{Purged: purged}, nil
}

func encodeBackups(grades []models.GradeRecord, marks []models.Attendance) (types.JSONText, types.JSONText, error) {
	gradeRows := make([]dto.GradeBackup, 0, len(grades))
	for _, g := range grades {
		gradeRows = append(gradeRows, dto.NewGradeBackup(g))
	}
	markRows := make([]dto.AttendanceBackup, 0, len(marks))
	for _, a := range marks {
		markRows = append(markRows, dto.NewAttendanceBackup(a))
	}
	gradesJSON, err := json.Marshal(gradeRows)
	if err != nil {
		return nil, nil, fmt.Errorf("encode grades backup: %w", err)
	}
	marksJSON, err := json.Marshal(markRows)
	if err != nil {
		return nil, nil, fmt.Errorf("encode attendance backup: %w", err)
	}
	return types.JSONText(gradesJSON), types.JSONText(marksJSON), nil
}

func decodeBackups(entry *models.TrashEntry) ([]dto.GradeBackup, []dto.AttendanceBackup, error) {
	grades := []dto.GradeBackup{}
	marks := []dto.AttendanceBackup{}
	if len(entry.GradesBackup) > 0 {
		if err := entry.GradesBackup.Unmarshal(&grades); err != nil {
			return nil, nil, fmt.Errorf("decode grades backup: %w", err)
		}
	}
	if len(entry.AttendanceBackup) > 0 {
		if err := entry.AttendanceBackup.Unmarshal(&marks); err != nil {
			return nil, nil, fmt.Errorf("decode attendance backup: %w", err)
		}
	}
	return grades, marks, nil
}
