package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/class-record-api/internal/dto"
	"github.com/noah-isme/class-record-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type catalogSeeder interface {
	AddSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error)
	AddSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error)
}

type teacherCreator interface {
	CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.TeacherProfile, error)
}

type teacherLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
	ListSubjects(ctx context.Context, teacherID string) ([]string, error)
}

type commandLine struct {
	migrate  func(ctx context.Context) error
	catalog  catalogSeeder
	teachers teacherCreator
	roster   teacherLister
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                  - create or update the record tables")
	fmt.Fprintln(cli.out, "  seed                                     - add the default subjects and sections")
	fmt.Fprintln(cli.out, "  create-teacher -id ID -name NAME -email EMAIL [-role ROLE] [-subjects A,B]")
	fmt.Fprintln(cli.out, "                                           - add an account; the password is prompted next")
	fmt.Fprintln(cli.out, "  list-teachers                            - print every account with its subjects")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	createTeacherCmd := flag.NewFlagSet("create-teacher", flag.ContinueOnError)
	createTeacherCmd.SetOutput(cli.out)
	teacherID := createTeacherCmd.String("id", "", "Login id of the account.")
	teacherName := createTeacherCmd.String("name", "", "Display name.")
	teacherEmail := createTeacherCmd.String("email", "", "Contact email.")
	teacherRole := createTeacherCmd.String("role", string(models.RoleTeacher), "ADMIN or TEACHER.")
	teacherSubjects := createTeacherCmd.String("subjects", "", "Comma separated subjects the teacher manages.")

	switch args[1] {
	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil
	case "seed":
		return cli.seed(ctx)
	case "create-teacher":
		if err := createTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *teacherID == "" || *teacherName == "" || *teacherEmail == "" {
			createTeacherCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createTeacherCmd.Usage()
			return errHelp
		}
		return cli.createTeacher(ctx, dto.CreateTeacherRequest{
			ID:       *teacherID,
			Name:     *teacherName,
			Email:    *teacherEmail,
			Password: string(pwd),
			Role:     strings.ToUpper(*teacherRole),
			Subjects: splitList(*teacherSubjects),
		})
	case "list-teachers":
		return cli.listTeachers(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
