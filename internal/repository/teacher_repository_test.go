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

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow("T001", "Mr. Cruz", "cruz@school.test", "hash", "TEACHER", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = $1")).WithArgs("T001").WillReturnRows(rows)

	teacher, err := repo.FindByID(context.Background(), nil, "T001")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, teacher.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryAddSubjectReportsChange(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_name) VALUES ($1, $2)")).
		WithArgs("T001", "Math").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_name) VALUES ($1, $2)")).
		WithArgs("T001", "Math").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.AddSubject(context.Background(), nil, "T001", "Math")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.AddSubject(context.Background(), nil, "T001", "Math")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListSubjects(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_name FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"subject_name"}).AddRow("English").AddRow("Math"))

	subjects, err := repo.ListSubjects(context.Background(), "T001")
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "Math"}, subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
