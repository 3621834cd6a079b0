package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
)

// SectionRepository handles persistence of sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListWithCounts returns sections with the number of students placed in each.
func (r *SectionRepository) ListWithCounts(ctx context.Context) ([]models.SectionSummary, error) {
	const query = `SELECT sec.id, sec.name, sec.grade_level, sec.created_at, COUNT(st.id) AS student_count
        FROM sections sec
        LEFT JOIN students st ON st.section = sec.name
        GROUP BY sec.id, sec.name, sec.grade_level, sec.created_at
        ORDER BY sec.grade_level ASC, sec.name ASC`
	var sections []models.SectionSummary
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// FindByName fetches a section by name. sql.ErrNoRows is returned unwrapped.
func (r *SectionRepository) FindByName(ctx context.Context, q sqlx.ExtContext, name string) (*models.Section, error) {
	var section models.Section
	const query = `SELECT id, name, grade_level, created_at FROM sections WHERE name = $1`
	if err := sqlx.GetContext(ctx, executor(r.db, q), &section, query, name); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create inserts a section.
func (r *SectionRepository) Create(ctx context.Context, q sqlx.ExtContext, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sections (id, name, grade_level, created_at) VALUES (:id, :name, :grade_level, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(r.db, q), query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Delete removes a section by name.
func (r *SectionRepository) Delete(ctx context.Context, q sqlx.ExtContext, name string) (int64, error) {
	res, err := executor(r.db, q).ExecContext(ctx, `DELETE FROM sections WHERE name = $1`, name)
	if err != nil {
		return 0, fmt.Errorf("delete section: %w", err)
	}
	return res.RowsAffected()
}
