package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

const studentColumns = "id, name, grade_level, section, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(strings.ToLower(filter.Search)))
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(id) LIKE $%d)", len(args), len(args)))
	}
	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY name ASC, id ASC", studentColumns, strings.Join(conditions, " AND "))

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := sqlx.GetContext(ctx, executor(r.db, q), &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListBySection returns every student placed in the section.
func (r *StudentRepository) ListBySection(ctx context.Context, q sqlx.ExtContext, section string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE section = $1 ORDER BY id ASC", studentColumns)
	var students []models.Student
	if err := sqlx.SelectContext(ctx, executor(r.db, q), &students, query, section); err != nil {
		return nil, fmt.Errorf("list students by section: %w", err)
	}
	return students, nil
}

// NextID returns the next free identifier in the S001 scheme.
func (r *StudentRepository) NextID(ctx context.Context, q sqlx.ExtContext) (string, error) {
	var ids []string
	if err := sqlx.SelectContext(ctx, executor(r.db, q), &ids, "SELECT id FROM students WHERE id LIKE 'S%'"); err != nil {
		return "", fmt.Errorf("list student ids: %w", err)
	}
	return NextStudentID(ids), nil
}

// NextStudentID derives the successor of the highest numeric suffix among ids.
// Identifiers that do not follow the S<digits> form are ignored.
func NextStudentID(ids []string) string {
	highest := 0
	for _, id := range ids {
		if !strings.HasPrefix(id, "S") {
			continue
		}
		n, err := strconv.Atoi(id[1:])
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("S%03d", highest+1)
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, q sqlx.ExtContext, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, grade_level, section, created_at, updated_at)
        VALUES (:id, :name, :grade_level, :section, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes a student row. Enrollment rows are the caller's concern.
func (r *StudentRepository) Delete(ctx context.Context, q sqlx.ExtContext, id string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete student rows affected: %w", err)
	}
	return affected, nil
}
