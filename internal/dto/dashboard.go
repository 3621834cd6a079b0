package dto

// SystemStats counts the records held by the store.
type SystemStats struct {
	Students     int `db:"students" json:"students"`
	Subjects     int `db:"subjects" json:"subjects"`
	Sections     int `db:"sections" json:"sections"`
	TrashEntries int `db:"trash_entries" json:"trash_entries"`
}

// SubjectStats summarises standing and attendance within one subject.
type SubjectStats struct {
	Subject        string   `json:"subject"`
	Enrolled       int      `json:"enrolled"`
	Passing        int      `json:"passing"`
	Failing        int      `json:"failing"`
	Dropped        int      `json:"dropped"`
	Ungraded       int      `json:"ungraded"`
	ClassAverage   *float64 `json:"class_average,omitempty"`
	AttendanceRate *float64 `json:"attendance_rate,omitempty"`
}
