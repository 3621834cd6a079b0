package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
)

var trashRowColumns = []string{"id", "original_id", "name", "grade_level", "section", "grades_backup", "attendance_backup", "deleted_from_subject", "deleted_at", "deleted_by"}

func TestTrashRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTrashRepository(db)

	mock.ExpectExec("INSERT INTO student_trash").
		WithArgs("TRASH-S001-x", "S001", "Ana Reyes", 9, "Grade 9 Rizal", sqlmock.AnyArg(), sqlmock.AnyArg(), "Math", sqlmock.AnyArg(), "T001").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), nil, &models.TrashEntry{
		ID:                 "TRASH-S001-x",
		OriginalID:         "S001",
		Name:               "Ana Reyes",
		GradeLevel:         9,
		Section:            "Grade 9 Rizal",
		GradesBackup:       types.JSONText(`[]`),
		AttendanceBackup:   types.JSONText(`[]`),
		DeletedFromSubject: "Math",
		DeletedAt:          time.Now(),
		DeletedBy:          "T001",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrashRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTrashRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(trashRowColumns).
		AddRow("TRASH-S002-b", "S002", "Ben Cruz", 10, "Grade 10 Mabini", `[]`, `[]`, "Science", now, "T001").
		AddRow("TRASH-S001-a", "S001", "Ana Reyes", 9, "Grade 9 Rizal", `[{"subject":"Math"}]`, `[]`, "Math", now.Add(-time.Hour), "T001")
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_trash ORDER BY deleted_at DESC")).WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "TRASH-S002-b", entries[0].ID)
	assert.JSONEq(t, `[{"subject":"Math"}]`, string(entries[1].GradesBackup))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrashRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTrashRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_trash")).WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.DeleteAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
