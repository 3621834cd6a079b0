package main

import (
	"context"
	"fmt"

	"github.com/noah-isme/class-record-api/internal/dto"
	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

var (
	defaultSubjects = []string{"Math", "Science", "English", "History", "Physics", "Biology", "Literature", "Geography"}

	juniorSections = []string{"Diamond", "Ruby", "Emerald", "Sapphire", "Pearl"}
	seniorStrands  = []string{"STEM", "ABM", "HUMSS", "GAS", "TVL"}
)

// seed adds the default catalog. Entries that already exist are skipped so
// the command can be rerun safely.
func (cli *commandLine) seed(ctx context.Context) error {
	var added, skipped int

	for _, name := range defaultSubjects {
		_, err := cli.catalog.AddSubject(ctx, dto.CreateSubjectRequest{Name: name})
		switch {
		case err == nil:
			added++
		case appErrors.HasCode(err, appErrors.ErrConflict.Code):
			skipped++
		default:
			return fmt.Errorf("seed subject %s: %w", name, err)
		}
	}

	for level := 9; level <= 12; level++ {
		labels := juniorSections
		if level >= 11 {
			labels = seniorStrands
		}
		for _, label := range labels {
			_, err := cli.catalog.AddSection(ctx, dto.CreateSectionRequest{GradeLevel: level, Label: label})
			switch {
			case err == nil:
				added++
			case appErrors.HasCode(err, appErrors.ErrConflict.Code):
				skipped++
			default:
				return fmt.Errorf("seed section grade %d %s: %w", level, label, err)
			}
		}
	}

	fmt.Fprintf(cli.out, "seed complete: %d added, %d already present\n", added, skipped)
	return nil
}
