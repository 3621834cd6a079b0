package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is written in the subset of SQL shared by PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'TEACHER',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS subjects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS teacher_subjects (
    teacher_id TEXT NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
    subject_name TEXT NOT NULL,
    PRIMARY KEY (teacher_id, subject_name)
)`,
	`CREATE TABLE IF NOT EXISTS sections (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    grade_level INTEGER NOT NULL CHECK (grade_level BETWEEN 9 AND 12),
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    grade_level INTEGER NOT NULL,
    section TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS grades (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    subject TEXT NOT NULL,
    written_works DOUBLE PRECISION,
    quizzes DOUBLE PRECISION,
    activities DOUBLE PRECISION,
    performance_tasks DOUBLE PRECISION,
    final_grade DOUBLE PRECISION,
    status TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (student_id, subject)
)`,
	`CREATE TABLE IF NOT EXISTS attendance (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    subject TEXT NOT NULL,
    date TEXT NOT NULL,
    status TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (student_id, subject, date)
)`,
	`CREATE TABLE IF NOT EXISTS student_trash (
    id TEXT PRIMARY KEY,
    original_id TEXT NOT NULL,
    name TEXT NOT NULL,
    grade_level INTEGER NOT NULL,
    section TEXT NOT NULL,
    grades_backup TEXT NOT NULL,
    attendance_backup TEXT NOT NULL,
    deleted_from_subject TEXT NOT NULL,
    deleted_at TIMESTAMP NOT NULL,
    deleted_by TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_students_section ON students (section)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_subject ON grades (subject)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_subject_date ON attendance (subject, date)`,
	`CREATE INDEX IF NOT EXISTS idx_trash_deleted_at ON student_trash (deleted_at)`,
}

// Migrate creates every table the record keeper needs. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return NewTxManager(db).WithinTx(ctx, func(q sqlx.ExtContext) error {
		for i, stmt := range schema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		return nil
	})
}
