package service

import (
	"math"

	"github.com/noah-isme/class-record-api/internal/models"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

const (
	// PassingThreshold is the lowest unrounded final grade that passes.
	PassingThreshold = 75.0
	componentWeight  = 0.25
	maxScore         = 100.0
)

// ComputeFinal averages the present components with equal weights. With no
// component present the final grade is 0. Status compares the unrounded value.
func ComputeFinal(c models.GradeComponents) (float64, models.GradeStatus) {
	var weighted, weights float64
	for _, v := range c.Values() {
		if v == nil {
			continue
		}
		weighted += *v * componentWeight
		weights += componentWeight
	}
	final := 0.0
	if weights > 0 {
		final = weighted / weights
	}
	if final >= PassingThreshold {
		return final, models.GradeStatusPassing
	}
	return final, models.GradeStatusFailing
}

// MergeComponents overlays the supplied components on the stored ones.
func MergeComponents(stored, update models.GradeComponents) models.GradeComponents {
	pick := func(old, new *float64) *float64 {
		if new != nil {
			return new
		}
		return old
	}
	return models.GradeComponents{
		WrittenWorks:     pick(stored.WrittenWorks, update.WrittenWorks),
		Quizzes:          pick(stored.Quizzes, update.Quizzes),
		Activities:       pick(stored.Activities, update.Activities),
		PerformanceTasks: pick(stored.PerformanceTasks, update.PerformanceTasks),
	}
}

// RoundGrade rounds half away from zero to one decimal place.
func RoundGrade(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundComponents returns a copy with every present component rounded.
func RoundComponents(c models.GradeComponents) models.GradeComponents {
	round := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		r := RoundGrade(*v)
		return &r
	}
	return models.GradeComponents{
		WrittenWorks:     round(c.WrittenWorks),
		Quizzes:          round(c.Quizzes),
		Activities:       round(c.Activities),
		PerformanceTasks: round(c.PerformanceTasks),
	}
}

// ValidateScores rejects an update with no component or with a score outside [0,100].
func ValidateScores(update models.GradeComponents) error {
	if update.Empty() {
		return appErrors.Clone(appErrors.ErrValidation, "at least one grade component is required")
	}
	names := []string{"written_works", "quizzes", "activities", "performance_tasks"}
	for i, v := range update.Values() {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || *v < 0 || *v > maxScore {
			return appErrors.Clone(appErrors.ErrValidation, names[i]+" must be between 0 and 100")
		}
	}
	return nil
}

// zeroedComponents is the component set of a dropped enrollment.
func zeroedComponents() models.GradeComponents {
	zero := func() *float64 { v := 0.0; return &v }
	return models.GradeComponents{
		WrittenWorks:     zero(),
		Quizzes:          zero(),
		Activities:       zero(),
		PerformanceTasks: zero(),
	}
}
