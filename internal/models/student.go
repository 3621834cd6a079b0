package models

import "time"

// Student represents a learner placed in a section.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	Section    string    `db:"section" json:"section"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Section string
	Search  string
}

// StudentSubject summarises one enrollment of a student.
type StudentSubject struct {
	Subject    string      `db:"subject" json:"subject"`
	Status     GradeStatus `db:"status" json:"status"`
	FinalGrade *float64    `db:"final_grade" json:"final_grade,omitempty"`
}
