package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

func newAttendanceFixture() (*memStore, *AttendanceService) {
	store := newMemStore()
	store.addSection("Grade 9 Rizal", 9)
	store.addSubject("Math")
	store.addStudent("S001", "Ana Reyes", 9, "Grade 9 Rizal")
	store.addStudent("S002", "Ben Cruz", 9, "Grade 9 Rizal")
	store.addStudent("S003", "Carla Dizon", 9, "Grade 9 Rizal")
	store.enroll("S001", "Math", models.GradeComponents{}, nil, models.GradeStatusUngraded)
	store.enroll("S002", "Math", models.GradeComponents{}, nil, models.GradeStatusDropped)
	svc := NewAttendanceService(&fakeTx{store: store}, memGrades{store}, memAttendance{store}, memSubjects{store}, nil, nil, nil)
	return store, svc
}

func TestAttendanceServiceMarkIsIdempotent(t *testing.T) {
	store, svc := newAttendanceFixture()
	req := dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "P"}

	_, err := svc.Mark(context.Background(), "Math", req)
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), "Math", req)
	require.NoError(t, err)

	require.Len(t, store.attendance, 1)
	assert.Equal(t, models.AttendancePresent, store.attendance[markKey("S001", "Math", "2024-01-05")].Status)

	_, err = svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "a"})
	require.NoError(t, err)
	require.Len(t, store.attendance, 1)
	assert.Equal(t, models.AttendanceAbsent, store.attendance[markKey("S001", "Math", "2024-01-05")].Status)
}

func TestAttendanceServiceMarkRejections(t *testing.T) {
	store, svc := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S002", Date: "2024-01-05", Status: "P"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))

	_, err = svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S003", Date: "2024-01-05", Status: "P"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S001", Date: "05/01/2024", Status: "P"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "L"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	assert.Empty(t, store.attendance)
}

func TestAttendanceServiceBulkMarkSkipsDropped(t *testing.T) {
	store, svc := newAttendanceFixture()

	result, err := svc.BulkMark(context.Background(), "Math", dto.BulkMarkRequest{
		Date:       "2024-01-05",
		Status:     "P",
		StudentIDs: []string{"S001", "S002", "S003", "S001"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S001"}, result.Marked)
	assert.Equal(t, []dto.SkippedStudent{
		{StudentID: "S002", Reason: SkipReasonDropped},
		{StudentID: "S003", Reason: SkipReasonNotEnrolled},
	}, result.Skipped)
	assert.Len(t, store.attendance, 1)
}

func TestAttendanceServiceBulkMarkRollsBack(t *testing.T) {
	store, svc := newAttendanceFixture()
	store.enroll("S003", "Math", models.GradeComponents{}, nil, models.GradeStatusUngraded)
	store.failOn = "attendance.upsert"

	_, err := svc.BulkMark(context.Background(), "Math", dto.BulkMarkRequest{Date: "2024-01-05", Status: "A", StudentIDs: []string{"S001", "S003"}})
	require.Error(t, err)
	assert.Empty(t, store.attendance)
}

func TestAttendanceServiceList(t *testing.T) {
	store, svc := newAttendanceFixture()
	store.mark("S001", "Math", "2024-01-05", models.AttendanceAbsent)

	rows, err := svc.List(context.Background(), models.AttendanceFilter{Subject: "Math", Date: "2024-01-05"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana Reyes", rows[0].StudentName)
	require.NotNil(t, rows[0].Status)
	assert.Equal(t, models.AttendanceAbsent, *rows[0].Status)
	assert.Nil(t, rows[1].Status)

	_, err = svc.List(context.Background(), models.AttendanceFilter{Subject: "Latin", Date: "2024-01-05"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestNewValidatorRegistersAttendanceStatus(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	require.NoError(t, v.Struct(dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "p"}))
	assert.Error(t, v.Struct(dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "X"}))

	store := newMemStore()
	store.addSection("Grade 9 Rizal", 9)
	store.addSubject("Math")
	store.addStudent("S001", "Ana Reyes", 9, "Grade 9 Rizal")
	store.enroll("S001", "Math", models.GradeComponents{}, nil, models.GradeStatusUngraded)
	svc := NewAttendanceService(&fakeTx{store: store}, memGrades{store}, memAttendance{store}, memSubjects{store}, nil, v, nil)

	_, err = svc.Mark(context.Background(), "Math", dto.MarkAttendanceRequest{StudentID: "S001", Date: "2024-01-05", Status: "X"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Empty(t, store.attendance)
}
