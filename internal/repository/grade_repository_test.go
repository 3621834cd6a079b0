package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/models"
)

var gradeRowColumns = []string{"id", "student_id", "subject", "written_works", "quizzes", "activities", "performance_tasks", "final_grade", "status", "updated_at"}

func TestGradeRepositoryFindScansNullComponents(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows(gradeRowColumns).
		AddRow("g1", "S001", "Math", 90.0, nil, 80.0, nil, 85.0, "Passing", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM grades WHERE student_id = $1 AND subject = $2")).
		WithArgs("S001", "Math").
		WillReturnRows(rows)

	record, err := repo.Find(context.Background(), nil, "S001", "Math")
	require.NoError(t, err)
	require.NotNil(t, record.WrittenWorks)
	assert.Equal(t, 90.0, *record.WrittenWorks)
	assert.Nil(t, record.Quizzes)
	assert.Nil(t, record.PerformanceTasks)
	assert.Equal(t, models.GradeStatusPassing, record.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListSheetFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	columns := append(append([]string{}, gradeRowColumns...), "student_name", "grade_level", "section")
	rows := sqlmock.NewRows(columns).
		AddRow("g1", "S001", "Math", nil, nil, nil, nil, nil, "Ungraded", time.Now(), "Ana Reyes", 9, "Grade 9 Rizal")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE g.subject = $1 AND s.section = $2 AND g.status = $3 AND (LOWER(s.name) LIKE $4 OR LOWER(s.id) LIKE $4)")).
		WithArgs("Math", "Grade 9 Rizal", models.GradeStatusUngraded, "%ana%").
		WillReturnRows(rows)

	sheet, err := repo.ListSheet(context.Background(), models.GradeFilter{Subject: "Math", Section: "Grade 9 Rizal", Status: models.GradeStatusUngraded, Search: "ANA"})
	require.NoError(t, err)
	require.Len(t, sheet, 1)
	assert.Equal(t, "Ana Reyes", sheet[0].StudentName)
	assert.Nil(t, sheet[0].FinalGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "S001", "Math", nil, nil, nil, nil, nil, models.GradeStatusUngraded, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.GradeRecord{StudentID: "S001", Subject: "Math", Status: models.GradeStatusUngraded}
	require.NoError(t, repo.Create(context.Background(), nil, record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(1) AS total FROM grades WHERE subject = $1 GROUP BY status")).
		WithArgs("Math").
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).AddRow("Passing", 3).AddRow("Dropped", 1))

	counts, err := repo.CountByStatus(context.Background(), "Math")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.GradeStatusPassing])
	assert.Equal(t, 1, counts[models.GradeStatusDropped])
	assert.Zero(t, counts[models.GradeStatusFailing])
	assert.NoError(t, mock.ExpectationsWereMet())
}
