package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

const gradeColumns = "id, student_id, subject, written_works, quizzes, activities, performance_tasks, final_grade, status, updated_at"

// GradeRepository persists enrollment rows and their component scores.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Find returns the enrollment of a student in a subject. sql.ErrNoRows is returned unwrapped.
func (r *GradeRepository) Find(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (*models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1 AND subject = $2", gradeColumns)
	var record models.GradeRecord
	if err := sqlx.GetContext(ctx, executor(r.db, q), &record, query, studentID, subject); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStudent returns every enrollment of a student across subjects.
func (r *GradeRepository) ListByStudent(ctx context.Context, q sqlx.ExtContext, studentID string) ([]models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE student_id = $1 ORDER BY subject ASC", gradeColumns)
	var records []models.GradeRecord
	if err := sqlx.SelectContext(ctx, executor(r.db, q), &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return records, nil
}

// ListSheet returns the grade sheet of a subject joined with student details.
func (r *GradeRepository) ListSheet(ctx context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error) {
	args := []interface{}{filter.Subject}
	conditions := []string{"g.subject = $1"}
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("s.section = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("g.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(strings.ToLower(filter.Search)))
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.id) LIKE $%d)", len(args), len(args)))
	}
	query := fmt.Sprintf(`SELECT g.id, g.student_id, g.subject, g.written_works, g.quizzes, g.activities, g.performance_tasks,
        g.final_grade, g.status, g.updated_at, s.name AS student_name, s.grade_level, s.section
        FROM grades g JOIN students s ON s.id = g.student_id
        WHERE %s ORDER BY s.name ASC, s.id ASC`, strings.Join(conditions, " AND "))

	var rows []models.GradeSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list grade sheet: %w", err)
	}
	return rows, nil
}

// ListStudentSubjects summarises a student's enrollments.
func (r *GradeRepository) ListStudentSubjects(ctx context.Context, studentID string) ([]models.StudentSubject, error) {
	const query = `SELECT subject, status, final_grade FROM grades WHERE student_id = $1 ORDER BY subject ASC`
	var subjects []models.StudentSubject
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student subjects: %w", err)
	}
	return subjects, nil
}

// Create inserts an enrollment row.
func (r *GradeRepository) Create(ctx context.Context, q sqlx.ExtContext, record *models.GradeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grades (id, student_id, subject, written_works, quizzes, activities, performance_tasks, final_grade, status, updated_at)
        VALUES (:id, :student_id, :subject, :written_works, :quizzes, :activities, :performance_tasks, :final_grade, :status, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, record); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update rewrites the components, final grade and status of an enrollment.
func (r *GradeRepository) Update(ctx context.Context, q sqlx.ExtContext, record *models.GradeRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET written_works = :written_works, quizzes = :quizzes, activities = :activities,
        performance_tasks = :performance_tasks, final_grade = :final_grade, status = :status, updated_at = :updated_at
        WHERE student_id = :student_id AND subject = :subject`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, record); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes the enrollment of a student in one subject.
func (r *GradeRepository) Delete(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM grades WHERE student_id = $1 AND subject = $2`, studentID, subject)
	if err != nil {
		return 0, fmt.Errorf("delete grade: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBySubject removes every enrollment in a subject.
func (r *GradeRepository) DeleteBySubject(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM grades WHERE subject = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("delete grades by subject: %w", err)
	}
	return res.RowsAffected()
}

// CountByStatus returns the number of enrollments per status in a subject.
func (r *GradeRepository) CountByStatus(ctx context.Context, subject string) (map[models.GradeStatus]int, error) {
	const query = `SELECT status, COUNT(1) AS total FROM grades WHERE subject = $1 GROUP BY status`
	var rows []struct {
		Status models.GradeStatus `db:"status"`
		Total  int                `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, subject); err != nil {
		return nil, fmt.Errorf("count grades by status: %w", err)
	}
	counts := make(map[models.GradeStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// AverageFinal returns the mean final grade over graded, non-dropped enrollments.
func (r *GradeRepository) AverageFinal(ctx context.Context, subject string) (*float64, error) {
	const query = `SELECT AVG(final_grade) FROM grades WHERE subject = $1 AND status IN ($2, $3) AND final_grade IS NOT NULL`
	var avg *float64
	if err := r.db.GetContext(ctx, &avg, query, subject, models.GradeStatusPassing, models.GradeStatusFailing); err != nil {
		return nil, fmt.Errorf("average final grade: %w", err)
	}
	return avg, nil
}
