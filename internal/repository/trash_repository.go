package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

const trashColumns = "id, original_id, name, grade_level, section, grades_backup, attendance_backup, deleted_from_subject, deleted_at, deleted_by"

// TrashRepository stores snapshots of removed enrollments.
type TrashRepository struct {
	db *sqlx.DB
}

// NewTrashRepository constructs a TrashRepository.
func NewTrashRepository(db *sqlx.DB) *TrashRepository {
	return &TrashRepository{db: db}
}

// Create inserts a trash entry.
func (r *TrashRepository) Create(ctx context.Context, q sqlx.ExtContext, entry *models.TrashEntry) error {
	const query = `INSERT INTO student_trash (id, original_id, name, grade_level, section, grades_backup, attendance_backup, deleted_from_subject, deleted_at, deleted_by)
        VALUES (:id, :original_id, :name, :grade_level, :section, :grades_backup, :attendance_backup, :deleted_from_subject, :deleted_at, :deleted_by)`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, entry); err != nil {
		return fmt.Errorf("create trash entry: %w", err)
	}
	return nil
}

// FindByID fetches a trash entry. sql.ErrNoRows is returned unwrapped.
func (r *TrashRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id string) (*models.TrashEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM student_trash WHERE id = $1", trashColumns)
	var entry models.TrashEntry
	if err := sqlx.GetContext(ctx, executor(r.db, q), &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns trash entries, newest first.
func (r *TrashRepository) List(ctx context.Context) ([]models.TrashEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM student_trash ORDER BY deleted_at DESC, id ASC", trashColumns)
	var entries []models.TrashEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	return entries, nil
}

// Delete removes one trash entry.
func (r *TrashRepository) Delete(ctx context.Context, q sqlx.ExtContext, id string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM student_trash WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete trash entry: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll empties the trash.
func (r *TrashRepository) DeleteAll(ctx context.Context, q sqlx.ExtContext) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM student_trash`)
	if err != nil {
		return 0, fmt.Errorf("empty trash: %w", err)
	}
	return res.RowsAffected()
}
