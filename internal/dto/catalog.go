package dto

// CreateSubjectRequest adds a subject to the catalog.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateSectionRequest adds a section for a grade level.
type CreateSectionRequest struct {
	GradeLevel int    `json:"grade_level" validate:"required,min=9,max=12"`
	Label      string `json:"label" validate:"required,max=60"`
}

// SubjectDeleteResult reports what a subject deletion removed.
type SubjectDeleteResult struct {
	Subject           string `json:"subject"`
	GradesRemoved     int64  `json:"grades_removed"`
	AttendanceRemoved int64  `json:"attendance_removed"`
	TeacherLinks      int64  `json:"teacher_links_removed"`
}

// SectionDeleteResult reports what a section deletion moved to trash.
type SectionDeleteResult struct {
	Section         string `json:"section"`
	StudentsRemoved int    `json:"students_removed"`
	TrashEntries    int    `json:"trash_entries"`
}

// AssignSubjectRequest links a subject to a teacher.
type AssignSubjectRequest struct {
	Subject string `json:"subject" validate:"required"`
}

// AssignmentResult reports a teacher-subject set change.
type AssignmentResult struct {
	TeacherID string `json:"teacher_id"`
	Subject   string `json:"subject"`
	Changed   bool   `json:"changed"`
}

// CreateStudentRequest registers a student in a section.
type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required,max=150"`
	GradeLevel int    `json:"grade_level" validate:"required,min=9,max=12"`
	Section    string `json:"section" validate:"required"`
}

// CreateTeacherRequest registers a teacher account.
type CreateTeacherRequest struct {
	ID       string   `json:"id" validate:"required,max=40"`
	Name     string   `json:"name" validate:"required,max=150"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     string   `json:"role" validate:"omitempty,oneof=ADMIN TEACHER"`
	Subjects []string `json:"subjects" validate:"omitempty,dive,required"`
}
