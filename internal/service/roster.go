package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
)

var ErrTeacherNotFound = errors.New("teacher not found")

// Roster manages students and adviser assignments.
type Roster struct {
	students *repo.Students
	teachers *repo.Teachers
	log      *zap.Logger
	now      func() time.Time
}

func NewRoster(students *repo.Students, teachers *repo.Teachers, log *zap.Logger) *Roster {
	return &Roster{students: students, teachers: teachers, log: log, now: time.Now}
}

// GenerateStudentID builds a fresh unique student id for manual creation.
func (r *Roster) GenerateStudentID() string {
	return fmt.Sprintf("S%d-%s", r.now().Year(), strings.ToUpper(uuid.NewString()[:8]))
}

// AddStudent creates a student with credential defaults left lazy: the
// username falls back to the id and the password to the shared default
// until the student changes them.
func (r *Roster) AddStudent(ctx context.Context, id, firstName, lastName, grade, section string) (*models.Student, error) {
	if id == "" {
		id = r.GenerateStudentID()
	}
	s := models.Student{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Grade:     grade,
		Section:   section,
	}
	if err := r.students.Insert(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ImportStudentsCSV bulk-loads students from a CSV stream with the header
// Student ID,First Name,Last Name,Grade,Section. Rows missing an id or a
// name are skipped; the whole batch lands in one bulk write.
func (r *Roster) ImportStudentsCSV(ctx context.Context, reader io.Reader) (int, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	var students []models.Student
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "Student ID") {
				continue
			}
		}
		if len(row) < 5 {
			continue
		}
		id := strings.TrimSpace(row[0])
		firstName := strings.TrimSpace(row[1])
		lastName := strings.TrimSpace(row[2])
		if id == "" || (firstName == "" && lastName == "") {
			continue
		}
		students = append(students, models.Student{
			ID:        id,
			FirstName: firstName,
			LastName:  lastName,
			Grade:     strings.TrimSpace(row[3]),
			Section:   strings.TrimSpace(row[4]),
		})
	}
	if len(students) == 0 {
		return 0, nil
	}
	if err := r.students.InsertAll(ctx, students); err != nil {
		return 0, err
	}
	return len(students), nil
}

// AssignAdviser makes the teacher the adviser of (grade, section). If
// another teacher currently advises that class, its advisory fields are
// cleared and its role demoted to subject first, keeping the one-adviser-
// per-class invariant.
func (r *Roster) AssignAdviser(ctx context.Context, teacherID, grade, section string, track, startTime *string) error {
	teacher, err := r.teachers.Get(ctx, teacherID)
	if err != nil {
		return err
	}
	if teacher == nil {
		return fmt.Errorf("%w: %s", ErrTeacherNotFound, teacherID)
	}

	current, err := r.teachers.AdviserForClass(ctx, grade, section)
	if err != nil {
		return err
	}
	if current != nil && current.ID != teacherID {
		if err := r.teachers.UpdateAdvisoryDetails(ctx, current.ID, nil, nil, nil, nil); err != nil {
			return err
		}
		r.log.Info("previous adviser cleared",
			zap.String("teacher", current.ID), zap.String("class", grade+"-"+section))
	}

	return r.teachers.UpdateAdvisoryDetails(ctx, teacherID, &grade, &section, track, startTime)
}

// RemoveAdviser clears the teacher's advisory class and demotes the role.
func (r *Roster) RemoveAdviser(ctx context.Context, teacherID string) error {
	return r.teachers.UpdateAdvisoryDetails(ctx, teacherID, nil, nil, nil, nil)
}

// UpdateSection hands a section to a (possibly different) adviser, renames
// it, and moves its students along.
func (r *Roster) UpdateSection(ctx context.Context, oldAdviserID, grade, oldSection, newAdviserID, newSection string, track *string) error {
	if oldAdviserID != newAdviserID {
		if err := r.teachers.UpdateAdvisoryDetails(ctx, oldAdviserID, nil, nil, nil, nil); err != nil {
			return err
		}
	}
	if err := r.teachers.UpdateAdvisoryDetails(ctx, newAdviserID, &grade, &newSection, track, nil); err != nil {
		return err
	}

	if oldSection == newSection {
		return nil
	}
	students, err := r.students.AllByClass(ctx, grade, oldSection)
	if err != nil {
		return err
	}
	for _, s := range students {
		s.Section = newSection
		if err := r.students.Update(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
