package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

// TeacherRepository manages teacher accounts and their subject assignments.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by ID. sql.ErrNoRows is returned unwrapped.
func (r *TeacherRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Teacher, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, executor(r.db, q), &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// List returns every teacher ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM teachers ORDER BY name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// Create inserts a teacher account.
func (r *TeacherRepository) Create(ctx context.Context, q sqlx.ExtContext, teacher *models.Teacher) error {
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// ListSubjects returns the subject names assigned to a teacher.
func (r *TeacherRepository) ListSubjects(ctx context.Context, teacherID string) ([]string, error) {
	const query = `SELECT subject_name FROM teacher_subjects WHERE teacher_id = $1 ORDER BY subject_name ASC`
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// HasSubject reports whether the subject is assigned to the teacher.
func (r *TeacherRepository) HasSubject(ctx context.Context, teacherID, subject string) (bool, error) {
	const query = `SELECT COUNT(1) FROM teacher_subjects WHERE teacher_id = $1 AND subject_name = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID, subject); err != nil {
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return count > 0, nil
}

// AddSubject links a subject to a teacher. It reports false when the link already existed.
func (r *TeacherRepository) AddSubject(ctx context.Context, q sqlx.ExtContext, teacherID, subject string) (bool, error) {
	const query = `INSERT INTO teacher_subjects (teacher_id, subject_name) VALUES ($1, $2)
        ON CONFLICT (teacher_id, subject_name) DO NOTHING`
	res, err := executor(r.db, q).ExecContext(ctx, query, teacherID, subject)
	if err != nil {
		return false, fmt.Errorf("add teacher subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add teacher subject rows affected: %w", err)
	}
	return affected > 0, nil
}

// RemoveSubject unlinks a subject from a teacher. It reports false when no link existed.
func (r *TeacherRepository) RemoveSubject(ctx context.Context, q sqlx.ExtContext, teacherID, subject string) (bool, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1 AND subject_name = $2`, teacherID, subject)
	if err != nil {
		return false, fmt.Errorf("remove teacher subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove teacher subject rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteSubjectLinks removes a subject from every teacher.
func (r *TeacherRepository) DeleteSubjectLinks(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM teacher_subjects WHERE subject_name = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("delete subject links: %w", err)
	}
	return res.RowsAffected()
}
