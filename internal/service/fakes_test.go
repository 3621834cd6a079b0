package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-record-api/internal/models"
	"github.com/noah-isme/class-record-api/internal/repository"
)

// memStore is an in-memory record store shared by the fake repositories.
type memStore struct {
	students   map[string]models.Student
	sections   map[string]models.Section
	subjects   map[string]models.Subject
	grades     map[string]models.GradeRecord
	attendance map[string]models.Attendance
	trash      map[string]models.TrashEntry
	teachers   map[string]models.Teacher
	links      map[string]map[string]bool

	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		students:   map[string]models.Student{},
		sections:   map[string]models.Section{},
		subjects:   map[string]models.Subject{},
		grades:     map[string]models.GradeRecord{},
		attendance: map[string]models.Attendance{},
		trash:      map[string]models.TrashEntry{},
		teachers:   map[string]models.Teacher{},
		links:      map[string]map[string]bool{},
	}
}

func gradeKey(studentID, subject string) string { return studentID + "\x00" + subject }

func markKey(studentID, subject, date string) string {
	return studentID + "\x00" + subject + "\x00" + date
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errors.New(op + " failed")
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range m.students {
		c.students[k] = v
	}
	for k, v := range m.sections {
		c.sections[k] = v
	}
	for k, v := range m.subjects {
		c.subjects[k] = v
	}
	for k, v := range m.grades {
		c.grades[k] = v
	}
	for k, v := range m.attendance {
		c.attendance[k] = v
	}
	for k, v := range m.trash {
		c.trash[k] = v
	}
	for k, v := range m.teachers {
		c.teachers[k] = v
	}
	for k, set := range m.links {
		c.links[k] = map[string]bool{}
		for s := range set {
			c.links[k][s] = true
		}
	}
	c.failOn = m.failOn
	return c
}

// fakeTx runs fn against the store and rolls every map back when fn fails.
type fakeTx struct {
	store *memStore
	calls int
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(q sqlx.ExtContext) error) error {
	f.calls++
	snapshot := f.store.clone()
	if err := fn(nil); err != nil {
		*f.store = *snapshot
		return err
	}
	return nil
}

func (m *memStore) addStudent(id, name string, level int, section string) {
	m.students[id] = models.Student{ID: id, Name: name, GradeLevel: level, Section: section}
}

func (m *memStore) addSection(name string, level int) {
	m.sections[name] = models.Section{ID: "sec-" + name, Name: name, GradeLevel: level}
}

func (m *memStore) addSubject(name string) {
	m.subjects[name] = models.Subject{ID: "sub-" + name, Name: name}
}

func (m *memStore) enroll(studentID, subject string, components models.GradeComponents, final *float64, status models.GradeStatus) {
	m.grades[gradeKey(studentID, subject)] = models.GradeRecord{
		ID: "g-" + studentID + "-" + subject, StudentID: studentID, Subject: subject,
		GradeComponents: components, FinalGrade: final, Status: status, UpdatedAt: time.Now(),
	}
}

func (m *memStore) mark(studentID, subject, date string, status models.AttendanceStatus) {
	m.attendance[markKey(studentID, subject, date)] = models.Attendance{
		ID: "a-" + studentID + subject + date, StudentID: studentID, Subject: subject, Date: date, Status: status,
	}
}

// memStudents implements the student repository contracts.
type memStudents struct{ *memStore }

func (r memStudents) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r memStudents) NextID(_ context.Context, _ sqlx.ExtContext) (string, error) {
	ids := make([]string, 0, len(r.students))
	for id := range r.students {
		ids = append(ids, id)
	}
	return repository.NextStudentID(ids), nil
}

func (r memStudents) Create(_ context.Context, _ sqlx.ExtContext, student *models.Student) error {
	if err := r.fail("student.create"); err != nil {
		return err
	}
	r.students[student.ID] = *student
	return nil
}

func (r memStudents) Delete(_ context.Context, _ sqlx.ExtContext, id string) (int64, error) {
	if _, ok := r.students[id]; !ok {
		return 0, nil
	}
	delete(r.students, id)
	return 1, nil
}

func (r memStudents) ListBySection(_ context.Context, _ sqlx.ExtContext, section string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range r.students {
		if s.Section == section {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range r.students {
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// memSections implements the section repository contracts.
type memSections struct{ *memStore }

func (r memSections) FindByName(_ context.Context, _ sqlx.ExtContext, name string) (*models.Section, error) {
	s, ok := r.sections[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r memSections) Create(_ context.Context, _ sqlx.ExtContext, section *models.Section) error {
	r.sections[section.Name] = *section
	return nil
}

func (r memSections) Delete(_ context.Context, _ sqlx.ExtContext, name string) (int64, error) {
	if _, ok := r.sections[name]; !ok {
		return 0, nil
	}
	delete(r.sections, name)
	return 1, nil
}

func (r memSections) ListWithCounts(_ context.Context) ([]models.SectionSummary, error) {
	var out []models.SectionSummary
	for _, sec := range r.sections {
		count := 0
		for _, st := range r.students {
			if st.Section == sec.Name {
				count++
			}
		}
		out = append(out, models.SectionSummary{Section: sec, StudentCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// memSubjects implements the subject repository contracts.
type memSubjects struct{ *memStore }

func (r memSubjects) FindByName(_ context.Context, _ sqlx.ExtContext, name string) (*models.Subject, error) {
	s, ok := r.subjects[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r memSubjects) Create(_ context.Context, _ sqlx.ExtContext, subject *models.Subject) error {
	r.subjects[subject.Name] = *subject
	return nil
}

func (r memSubjects) Delete(_ context.Context, _ sqlx.ExtContext, name string) (int64, error) {
	if _, ok := r.subjects[name]; !ok {
		return 0, nil
	}
	delete(r.subjects, name)
	return 1, nil
}

func (r memSubjects) List(_ context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range r.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// memGrades implements the grade repository contracts.
type memGrades struct{ *memStore }

func (r memGrades) Find(_ context.Context, _ sqlx.ExtContext, studentID, subject string) (*models.GradeRecord, error) {
	g, ok := r.grades[gradeKey(studentID, subject)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (r memGrades) ListByStudent(_ context.Context, _ sqlx.ExtContext, studentID string) ([]models.GradeRecord, error) {
	var out []models.GradeRecord
	for _, g := range r.grades {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (r memGrades) Create(_ context.Context, _ sqlx.ExtContext, record *models.GradeRecord) error {
	if err := r.fail("grade.create"); err != nil {
		return err
	}
	key := gradeKey(record.StudentID, record.Subject)
	if _, ok := r.grades[key]; ok {
		return errors.New("unique violation")
	}
	if record.ID == "" {
		record.ID = "g-" + record.StudentID + "-" + record.Subject
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	r.grades[key] = *record
	return nil
}

func (r memGrades) Update(_ context.Context, _ sqlx.ExtContext, record *models.GradeRecord) error {
	if err := r.fail("grade.update"); err != nil {
		return err
	}
	record.UpdatedAt = time.Now()
	r.grades[gradeKey(record.StudentID, record.Subject)] = *record
	return nil
}

func (r memGrades) Delete(_ context.Context, _ sqlx.ExtContext, studentID, subject string) (int64, error) {
	key := gradeKey(studentID, subject)
	if _, ok := r.grades[key]; !ok {
		return 0, nil
	}
	delete(r.grades, key)
	return 1, nil
}

func (r memGrades) DeleteBySubject(_ context.Context, _ sqlx.ExtContext, subject string) (int64, error) {
	var n int64
	for k, g := range r.grades {
		if g.Subject == subject {
			delete(r.grades, k)
			n++
		}
	}
	return n, nil
}

func (r memGrades) ListSheet(_ context.Context, filter models.GradeFilter) ([]models.GradeSheetRow, error) {
	var out []models.GradeSheetRow
	for _, g := range r.grades {
		if g.Subject != filter.Subject {
			continue
		}
		st := r.students[g.StudentID]
		if filter.Section != "" && st.Section != filter.Section {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(st.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, models.GradeSheetRow{GradeRecord: g, StudentName: st.Name, GradeLevel: st.GradeLevel, Section: st.Section})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (r memGrades) ListStudentSubjects(_ context.Context, studentID string) ([]models.StudentSubject, error) {
	var out []models.StudentSubject
	for _, g := range r.grades {
		if g.StudentID == studentID {
			out = append(out, models.StudentSubject{Subject: g.Subject, Status: g.Status, FinalGrade: g.FinalGrade})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (r memGrades) CountByStatus(_ context.Context, subject string) (map[models.GradeStatus]int, error) {
	counts := map[models.GradeStatus]int{}
	for _, g := range r.grades {
		if g.Subject == subject {
			counts[g.Status]++
		}
	}
	return counts, nil
}

func (r memGrades) AverageFinal(_ context.Context, subject string) (*float64, error) {
	var sum float64
	var n int
	for _, g := range r.grades {
		if g.Subject != subject || g.FinalGrade == nil {
			continue
		}
		if g.Status != models.GradeStatusPassing && g.Status != models.GradeStatusFailing {
			continue
		}
		sum += *g.FinalGrade
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}

// memAttendance implements the attendance repository contracts.
type memAttendance struct{ *memStore }

func (r memAttendance) Upsert(_ context.Context, _ sqlx.ExtContext, record *models.Attendance) error {
	if err := r.fail("attendance.upsert"); err != nil {
		return err
	}
	key := markKey(record.StudentID, record.Subject, record.Date)
	if existing, ok := r.attendance[key]; ok {
		record.ID = existing.ID
	} else if record.ID == "" {
		record.ID = "a-" + key
	}
	record.UpdatedAt = time.Now()
	r.attendance[key] = *record
	return nil
}

func (r memAttendance) ListByStudent(_ context.Context, _ sqlx.ExtContext, studentID string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, a := range r.attendance {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Date < out[j].Date
	})
	return out, nil
}

func (r memAttendance) Delete(_ context.Context, _ sqlx.ExtContext, studentID, subject string) (int64, error) {
	var n int64
	for k, a := range r.attendance {
		if a.StudentID == studentID && a.Subject == subject {
			delete(r.attendance, k)
			n++
		}
	}
	return n, nil
}

func (r memAttendance) DeleteBySubject(_ context.Context, _ sqlx.ExtContext, subject string) (int64, error) {
	var n int64
	for k, a := range r.attendance {
		if a.Subject == subject {
			delete(r.attendance, k)
			n++
		}
	}
	return n, nil
}

func (r memAttendance) ListSheet(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceSheetRow, error) {
	var out []models.AttendanceSheetRow
	for _, g := range r.grades {
		if g.Subject != filter.Subject {
			continue
		}
		st := r.students[g.StudentID]
		if filter.Section != "" && st.Section != filter.Section {
			continue
		}
		row := models.AttendanceSheetRow{StudentID: st.ID, StudentName: st.Name, Section: st.Section, GradeStatus: g.Status}
		if a, ok := r.attendance[markKey(g.StudentID, g.Subject, filter.Date)]; ok {
			status := a.Status
			row.Status = &status
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (r memAttendance) PresentRate(_ context.Context, subject string) (*float64, error) {
	var total, present int
	for _, a := range r.attendance {
		if a.Subject != subject {
			continue
		}
		total++
		if a.Status == models.AttendancePresent {
			present++
		}
	}
	if total == 0 {
		return nil, nil
	}
	rate := float64(present) / float64(total)
	return &rate, nil
}

// memTrash implements the trash repository contracts.
type memTrash struct{ *memStore }

func (r memTrash) Create(_ context.Context, _ sqlx.ExtContext, entry *models.TrashEntry) error {
	if err := r.fail("trash.create"); err != nil {
		return err
	}
	r.trash[entry.ID] = *entry
	return nil
}

func (r memTrash) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.TrashEntry, error) {
	e, ok := r.trash[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (r memTrash) List(_ context.Context) ([]models.TrashEntry, error) {
	var out []models.TrashEntry
	for _, e := range r.trash {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletedAt.After(out[j].DeletedAt) })
	return out, nil
}

func (r memTrash) Delete(_ context.Context, _ sqlx.ExtContext, id string) (int64, error) {
	if _, ok := r.trash[id]; !ok {
		return 0, nil
	}
	delete(r.trash, id)
	return 1, nil
}

func (r memTrash) DeleteAll(_ context.Context, _ sqlx.ExtContext) (int64, error) {
	n := int64(len(r.trash))
	r.trash = map[string]models.TrashEntry{}
	return n, nil
}

// memTeachers implements the teacher repository contracts.
type memTeachers struct{ *memStore }

func (r memTeachers) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Teacher, error) {
	t, ok := r.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r memTeachers) Create(_ context.Context, _ sqlx.ExtContext, teacher *models.Teacher) error {
	if _, ok := r.teachers[teacher.ID]; ok {
		return errors.New("unique violation")
	}
	r.teachers[teacher.ID] = *teacher
	return nil
}

func (r memTeachers) ListSubjects(_ context.Context, teacherID string) ([]string, error) {
	var out []string
	for s := range r.links[teacherID] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (r memTeachers) HasSubject(_ context.Context, teacherID, subject string) (bool, error) {
	return r.links[teacherID][subject], nil
}

func (r memTeachers) AddSubject(_ context.Context, _ sqlx.ExtContext, teacherID, subject string) (bool, error) {
	if r.links[teacherID] == nil {
		r.links[teacherID] = map[string]bool{}
	}
	if r.links[teacherID][subject] {
		return false, nil
	}
	r.links[teacherID][subject] = true
	return true, nil
}

func (r memTeachers) RemoveSubject(_ context.Context, _ sqlx.ExtContext, teacherID, subject string) (bool, error) {
	if !r.links[teacherID][subject] {
		return false, nil
	}
	delete(r.links[teacherID], subject)
	return true, nil
}

func (r memTeachers) DeleteSubjectLinks(_ context.Context, _ sqlx.ExtContext, subject string) (int64, error) {
	var n int64
	for _, set := range r.links {
		if set[subject] {
			delete(set, subject)
			n++
		}
	}
	return n, nil
}

// countingInvalidator records dashboard invalidations.
type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateDashboard(context.Context) { c.calls++ }
