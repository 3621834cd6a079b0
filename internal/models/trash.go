package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TrashEntry is a snapshot of a student taken when an enrollment was removed.
// The backups hold every subject of the student at that moment while only
// DeletedFromSubject was actually removed.
type TrashEntry struct {
	ID                 string         `db:"id" json:"id"`
	OriginalID         string         `db:"original_id" json:"original_id"`
	Name               string         `db:"name" json:"name"`
	GradeLevel         int            `db:"grade_level" json:"grade_level"`
	Section            string         `db:"section" json:"section"`
	GradesBackup       types.JSONText `db:"grades_backup" json:"-"`
	AttendanceBackup   types.JSONText `db:"attendance_backup" json:"-"`
	DeletedFromSubject string         `db:"deleted_from_subject" json:"deleted_from_subject"`
	DeletedAt          time.Time      `db:"deleted_at" json:"deleted_at"`
	DeletedBy          string         `db:"deleted_by" json:"deleted_by"`
}
