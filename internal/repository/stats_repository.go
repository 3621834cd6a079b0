package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/dto"
)

// StatsRepository runs the aggregate queries behind the dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// SystemCounts returns the number of students, subjects, sections and trash entries.
func (r *StatsRepository) SystemCounts(ctx context.Context) (*dto.SystemStats, error) {
	const query = `SELECT
        (SELECT COUNT(1) FROM students) AS students,
        (SELECT COUNT(1) FROM subjects) AS subjects,
        (SELECT COUNT(1) FROM sections) AS sections,
        (SELECT COUNT(1) FROM student_trash) AS trash_entries`
	var stats dto.SystemStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("system counts: %w", err)
	}
	return &stats, nil
}
