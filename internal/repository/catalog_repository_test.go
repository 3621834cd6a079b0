package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
)

func TestSubjectRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "Math", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{Name: "Math"}
	require.NoError(t, repo.Create(context.Background(), nil, subject))
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByNameMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at FROM subjects WHERE name = $1")).
		WithArgs("Latin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

	_, err := repo.FindByName(context.Background(), nil, "Latin")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListWithCounts(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "grade_level", "created_at", "student_count"}).
		AddRow("1", "Grade 9 Rizal", 9, time.Now(), 12).
		AddRow("2", "Grade 10 Mabini", 10, time.Now(), 0)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(st.id) AS student_count")).WillReturnRows(rows)

	sections, err := repo.ListWithCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, 12, sections[0].StudentCount)
	assert.Equal(t, "Grade 10 Mabini", sections[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sections WHERE name = $1")).
		WithArgs("Grade 9 Rizal").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), nil, "Grade 9 Rizal")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
