package models

import "time"

// GradeStatus is the standing of a student in one subject.
type GradeStatus string

const (
	GradeStatusPassing  GradeStatus = "Passing"
	GradeStatusFailing  GradeStatus = "Failing"
	GradeStatusDropped  GradeStatus = "Dropped"
	GradeStatusUngraded GradeStatus = "Ungraded"
)

// Settable reports whether the status may be assigned explicitly.
func (s GradeStatus) Settable() bool {
	return s == GradeStatusPassing || s == GradeStatusFailing || s == GradeStatusDropped
}

// GradeComponents holds the four equally weighted score components. A nil
// component has not been recorded yet.
type GradeComponents struct {
	WrittenWorks     *float64 `db:"written_works" json:"written_works"`
	Quizzes          *float64 `db:"quizzes" json:"quizzes"`
	Activities       *float64 `db:"activities" json:"activities"`
	PerformanceTasks *float64 `db:"performance_tasks" json:"performance_tasks"`
}

// Values returns the components in their canonical order.
func (g GradeComponents) Values() []*float64 {
	return []*float64{g.WrittenWorks, g.Quizzes, g.Activities, g.PerformanceTasks}
}

// Empty reports whether no component is set.
func (g GradeComponents) Empty() bool {
	for _, v := range g.Values() {
		if v != nil {
			return false
		}
	}
	return true
}

// GradeRecord is the enrollment row of a student in a subject.
type GradeRecord struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	Subject   string `db:"subject" json:"subject"`
	GradeComponents
	FinalGrade *float64    `db:"final_grade" json:"final_grade"`
	Status     GradeStatus `db:"status" json:"status"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// GradeSheetRow is a grade record joined with student details.
type GradeSheetRow struct {
	GradeRecord
	StudentName string `db:"student_name" json:"student_name"`
	GradeLevel  int    `db:"grade_level" json:"grade_level"`
	Section     string `db:"section" json:"section"`
}

// GradeFilter narrows a subject grade sheet.
type GradeFilter struct {
	Subject string
	Section string
	Status  GradeStatus
	Search  string
}
