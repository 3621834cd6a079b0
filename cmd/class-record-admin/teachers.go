package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/class-record-api/internal/dto"
)

func (cli *commandLine) createTeacher(ctx context.Context, req dto.CreateTeacherRequest) error {
	profile, err := cli.teachers.CreateTeacher(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s (%s) with %d subject(s)\n", profile.ID, profile.Role, len(profile.Subjects))
	return nil
}

func (cli *commandLine) listTeachers(ctx context.Context) error {
	teachers, err := cli.roster.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSUBJECTS")
	for _, t := range teachers {
		subjects, err := cli.roster.ListSubjects(ctx, t.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Email, t.Role, strings.Join(subjects, ", "))
	}
	return w.Flush()
}
