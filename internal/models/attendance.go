package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "P"
	AttendanceAbsent  AttendanceStatus = "A"
)

// Valid reports whether the status is present or absent.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// AttendanceDateLayout is the calendar date format stored in attendance rows.
const AttendanceDateLayout = "2006-01-02"

// Attendance is the mark of one student in one subject on one day.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Subject   string           `db:"subject" json:"subject"`
	Date      string           `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSheetRow lists an enrolled student with the mark for a day, if any.
type AttendanceSheetRow struct {
	StudentID   string            `db:"student_id" json:"student_id"`
	StudentName string            `db:"student_name" json:"student_name"`
	Section     string            `db:"section" json:"section"`
	GradeStatus GradeStatus       `db:"grade_status" json:"grade_status"`
	Status      *AttendanceStatus `db:"status" json:"status,omitempty"`
}

// AttendanceFilter scopes an attendance sheet.
type AttendanceFilter struct {
	Subject string
	Date    string
	Section string
}
