package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

// AttendanceRepository persists per-day attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records a mark, replacing the status of an existing mark for the same day.
func (r *AttendanceRepository) Upsert(ctx context.Context, q sqlx.ExtContext, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO attendance (id, student_id, subject, date, status, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (student_id, subject, date) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := executor(r.db, q).ExecContext(ctx, query, record.ID, record.StudentID, record.Subject, record.Date, record.Status, record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// ListByStudent returns every mark of a student across subjects.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, q sqlx.ExtContext, studentID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, subject, date, status, updated_at FROM attendance WHERE student_id = $1 ORDER BY subject ASC, date ASC`
	var records []models.Attendance
	if err := sqlx.SelectContext(ctx, executor(r.db, q), &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// ListSheet returns every enrolled student of a subject with the mark for the day, if any.
func (r *AttendanceRepository) ListSheet(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error) {
	query := `SELECT s.id AS student_id, s.name AS student_name, s.section, g.status AS grade_status, a.status
        FROM grades g
        JOIN students s ON s.id = g.student_id
        LEFT JOIN attendance a ON a.student_id = g.student_id AND a.subject = g.subject AND a.date = $1
        WHERE g.subject = $2`
	args := []interface{}{filter.Date, filter.Subject}
	if filter.Section != "" {
		query += " AND s.section = $3"
		args = append(args, filter.Section)
	}
	query += " ORDER BY s.name ASC, s.id ASC"

	var rows []models.AttendanceSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance sheet: %w", err)
	}
	return rows, nil
}

// Delete removes the marks of a student in one subject.
func (r *AttendanceRepository) Delete(ctx context.Context, q sqlx.ExtContext, studentID, subject string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1 AND subject = $2`, studentID, subject)
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBySubject removes every mark in a subject.
func (r *AttendanceRepository) DeleteBySubject(ctx context.Context, q sqlx.ExtContext, subject string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM attendance WHERE subject = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("delete attendance by subject: %w", err)
	}
	return res.RowsAffected()
}

// PresentRate returns the share of present marks in a subject, nil when no marks exist.
func (r *AttendanceRepository) PresentRate(ctx context.Context, subject string) (*float64, error) {
	const query = `SELECT COUNT(1) AS total, COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present
        FROM attendance WHERE subject = $2`
	var counts struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}
	if err := r.db.GetContext(ctx, &counts, query, models.AttendancePresent, subject); err != nil {
		return nil, fmt.Errorf("attendance rate: %w", err)
	}
	if counts.Total == 0 {
		return nil, nil
	}
	rate := float64(counts.Present) / float64(counts.Total)
	return &rate, nil
}
