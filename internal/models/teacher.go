package models

import "time"

// Teacher represents an account that records grades and attendance.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherProfile is a teacher with the subjects assigned to them.
type TeacherProfile struct {
	Teacher
	Subjects []string `json:"subjects"`
}

// TeacherSubject links a teacher to a subject they may manage.
type TeacherSubject struct {
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
