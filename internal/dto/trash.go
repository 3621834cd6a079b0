package dto

import (
	"time"

	"github.com/noah-isme/class-record-api/internal/models"
)

// GradeBackup is a grade row as serialised inside a trash entry.
type GradeBackup struct {
	StudentID        string             `json:"student_id"`
	Subject          string             `json:"subject"`
	WrittenWorks     *float64           `json:"written_works"`
	Quizzes          *float64           `json:"quizzes"`
	Activities       *float64           `json:"activities"`
	PerformanceTasks *float64           `json:"performance_tasks"`
	FinalGrade       *float64           `json:"final_grade"`
	Status           models.GradeStatus `json:"status"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewGradeBackup snapshots a stored grade row.
func NewGradeBackup(g models.GradeRecord) GradeBackup {
	return GradeBackup{
		StudentID:        g.StudentID,
		Subject:          g.Subject,
		WrittenWorks:     g.WrittenWorks,
		Quizzes:          g.Quizzes,
		Activities:       g.Activities,
		PerformanceTasks: g.PerformanceTasks,
		FinalGrade:       g.FinalGrade,
		Status:           g.Status,
		UpdatedAt:        g.UpdatedAt,
	}
}

// AttendanceBackup is an attendance row as serialised inside a trash entry.
type AttendanceBackup struct {
	StudentID string                  `json:"student_id"`
	Subject   string                  `json:"subject"`
	Date      string                  `json:"date"`
	Status    models.AttendanceStatus `json:"status"`
}

// NewAttendanceBackup snapshots a stored attendance row.
func NewAttendanceBackup(a models.Attendance) AttendanceBackup {
	return AttendanceBackup{StudentID: a.StudentID, Subject: a.Subject, Date: a.Date, Status: a.Status}
}

// TrashDetail is a trash entry with its backups decoded.
type TrashDetail struct {
	models.TrashEntry
	Grades     []GradeBackup      `json:"grades"`
	Attendance []AttendanceBackup `json:"attendance"`
}

// RestoreResult reports where a trashed enrollment was restored to.
type RestoreResult struct {
	TrashID            string `json:"trash_id"`
	OriginalID         string `json:"original_id"`
	StudentID          string `json:"student_id"`
	Subject            string `json:"subject"`
	IDChanged          bool   `json:"id_changed"`
	StudentRecreated   bool   `json:"student_recreated"`
	GradesRestored     int    `json:"grades_restored"`
	AttendanceRestored int    `json:"attendance_restored"`
}

// PurgeResult reports how many trash entries were removed.
type PurgeResult struct {
	Purged int64 `json:"purged"`
}
