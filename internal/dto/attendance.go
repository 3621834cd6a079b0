package dto

import "github.com/noah-isme/class-record-api/internal/models"

// MarkAttendanceRequest records one student's attendance for a day.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
}

// BulkMarkRequest records the same status for several students.
type BulkMarkRequest struct {
	Date       string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status     models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
	StudentIDs []string                `json:"student_ids" validate:"required,min=1,dive,required"`
}

// SkippedStudent explains why a bulk mark did not apply to a student.
type SkippedStudent struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkMarkResult summarises a bulk attendance update.
type BulkMarkResult struct {
	Subject string           `json:"subject"`
	Date    string           `json:"date"`
	Status  string           `json:"status"`
	Marked  []string         `json:"marked"`
	Skipped []SkippedStudent `json:"skipped"`
}
