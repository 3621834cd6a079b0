package models

import (
	"fmt"
	"time"
)

// Grade levels accepted for sections and students.
const (
	MinGradeLevel = 9
	MaxGradeLevel = 12
)

// Section is a named group of students within one grade level.
type Section struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SectionSummary is a section with its live student count.
type SectionSummary struct {
	Section
	StudentCount int `db:"student_count" json:"student_count"`
}

// SectionName builds the canonical display name, e.g. "Grade 9 Rizal".
func SectionName(gradeLevel int, label string) string {
	return fmt.Sprintf("Grade %d %s", gradeLevel, label)
}
