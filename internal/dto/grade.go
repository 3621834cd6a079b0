package dto

import "github.com/noah-isme/class-record-api/internal/models"

// EnrollRequest adds a student to a subject.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// UpdateGradesRequest carries a partial component update. Omitted fields keep
// their stored value.
type UpdateGradesRequest struct {
	WrittenWorks     *float64 `json:"written_works" validate:"omitempty,gte=0,lte=100"`
	Quizzes          *float64 `json:"quizzes" validate:"omitempty,gte=0,lte=100"`
	Activities       *float64 `json:"activities" validate:"omitempty,gte=0,lte=100"`
	PerformanceTasks *float64 `json:"performance_tasks" validate:"omitempty,gte=0,lte=100"`
}

// Components converts the request into grade components.
func (r UpdateGradesRequest) Components() models.GradeComponents {
	return models.GradeComponents{
		WrittenWorks:     r.WrittenWorks,
		Quizzes:          r.Quizzes,
		Activities:       r.Activities,
		PerformanceTasks: r.PerformanceTasks,
	}
}

// SetStatusRequest changes the standing of an enrollment.
type SetStatusRequest struct {
	Status models.GradeStatus `json:"status" validate:"required,oneof=Passing Failing Dropped"`
}

// StatusChangeResult reports the outcome of SetStatus. Changed is false when
// the enrollment already had the requested status.
type StatusChangeResult struct {
	StudentID string             `json:"student_id"`
	Subject   string             `json:"subject"`
	Status    models.GradeStatus `json:"status"`
	Changed   bool               `json:"changed"`
	Message   string             `json:"message,omitempty"`
}
