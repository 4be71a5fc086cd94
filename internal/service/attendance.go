// Package service holds the business operations on top of the
// repositories: attendance recording, the bulk sweeps, and roster
// management.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/period"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
)

// ErrCalendarNotConfigured rejects live recording when no configured
// quarter contains the timestamp. Mis-bucketed records corrupt quarterly
// reporting, so live paths never default.
var ErrCalendarNotConfigured = errors.New("academic calendar not configured for this date")

// ErrStudentNotFound covers both local and remote misses.
var ErrStudentNotFound = errors.New("student not found")

// sweepFallbackPeriod is used by the bulk sweeps instead of rejecting:
// they run on a schedule and aborting the whole sweep over calendar gaps
// would silently skip absentees.
const sweepFallbackPeriod = "Q1"

type Attendance struct {
	students    *repo.Students
	attendance  *repo.Attendance
	periods     *repo.Period
	log         *zap.Logger
	triggerSync func()
	now         func() time.Time
}

// NewAttendance wires the attendance operations. triggerSync requests an
// immediate sync pass and must not block.
func NewAttendance(students *repo.Students, attendance *repo.Attendance, periods *repo.Period,
	log *zap.Logger, triggerSync func()) *Attendance {
	if triggerSync == nil {
		triggerSync = func() {}
	}
	return &Attendance{
		students:    students,
		attendance:  attendance,
		periods:     periods,
		log:         log,
		triggerSync: triggerSync,
		now:         time.Now,
	}
}

func (s *Attendance) resolvePeriod(ctx context.Context, grade string, ts int64) (string, error) {
	junior, ok := period.DivisionForGrade(grade)
	if !ok {
		return "", ErrCalendarNotConfigured
	}
	cfg, err := s.periods.Get(ctx)
	if err != nil {
		return "", err
	}
	label := period.Resolve(ts, junior, cfg)
	if label == period.Unresolved {
		return "", ErrCalendarNotConfigured
	}
	return label, nil
}

// RecordScan records a QR scan as "present" at the current time and
// triggers an immediate sync pass.
func (s *Attendance) RecordScan(ctx context.Context, studentID, typ string, subject *string) (*models.AttendanceRecord, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return s.record(ctx, student, models.StatusPresent, typ, subject, s.now().UnixMilli())
}

// RecordManual records an explicit status for a student referenced by id or
// by name ("First Last", "Last, First", or either name alone).
func (s *Attendance) RecordManual(ctx context.Context, identifier, status, typ string, subject *string, ts int64) (*models.AttendanceRecord, error) {
	student, err := s.students.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if student == nil {
		student, err = s.findByName(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	if student == nil {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, identifier)
	}
	if ts == 0 {
		ts = s.now().UnixMilli()
	}
	return s.record(ctx, student, status, typ, subject, ts)
}

func (s *Attendance) findByName(ctx context.Context, identifier string) (*models.Student, error) {
	all, err := s.students.All(ctx)
	if err != nil {
		return nil, err
	}
	for i, st := range all {
		full := st.FirstName + " " + st.LastName
		reverse := st.LastName + ", " + st.FirstName
		if strings.EqualFold(full, identifier) || strings.EqualFold(reverse, identifier) ||
			strings.EqualFold(st.FirstName, identifier) || strings.EqualFold(st.LastName, identifier) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (s *Attendance) record(ctx context.Context, student *models.Student, status, typ string, subject *string, ts int64) (*models.AttendanceRecord, error) {
	label, err := s.resolvePeriod(ctx, student.Grade, ts)
	if err != nil {
		return nil, err
	}
	if typ != models.TypeSubject {
		subject = nil
	}
	rec := models.AttendanceRecord{
		StudentID:      student.ID,
		Timestamp:      ts,
		Status:         status,
		Type:           typ,
		Subject:        subject,
		AcademicPeriod: label,
		Synced:         false,
	}
	if err := s.attendance.Record(ctx, rec); err != nil {
		return nil, err
	}
	s.triggerSync()
	return &rec, nil
}

// MarkAbsentees marks every enrolled student of the class without a record
// today as absent. Unlike the live paths this falls back to a default
// quarter label rather than aborting the sweep.
func (s *Attendance) MarkAbsentees(ctx context.Context, grade, section, typ string, subject *string) (int, error) {
	enrolled, err := s.students.ByClass(ctx, grade, section)
	if err != nil {
		return 0, err
	}
	if len(enrolled) == 0 {
		return 0, nil
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()

	subjectName := ""
	if subject != nil {
		subjectName = *subject
	}
	history, err := s.attendance.BySubjectInRange(ctx, subjectName, midnight, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	recorded := make(map[string]bool, len(history))
	for _, rec := range history {
		recorded[rec.StudentID] = true
	}

	label, err := s.resolvePeriod(ctx, grade, now.UnixMilli())
	if errors.Is(err, ErrCalendarNotConfigured) {
		label = sweepFallbackPeriod
	} else if err != nil {
		return 0, err
	}

	if typ != models.TypeSubject {
		subject = nil
	}
	marked := 0
	for _, student := range enrolled {
		if recorded[student.ID] {
			continue
		}
		rec := models.AttendanceRecord{
			StudentID:      student.ID,
			Timestamp:      now.UnixMilli(),
			Status:         models.StatusAbsent,
			Type:           typ,
			Subject:        subject,
			AcademicPeriod: label,
			Synced:         false,
		}
		if err := s.attendance.Record(ctx, rec); err != nil {
			return marked, err
		}
		marked++
	}
	if marked > 0 {
		s.triggerSync()
	}
	s.log.Info("absentee sweep done", zap.String("class", grade+"-"+section), zap.Int("marked", marked))
	return marked, nil
}

// MarkNoClassDay marks every active student without a record on the
// event's day as not-applicable. Runs for no-class events only.
func (s *Attendance) MarkNoClassDay(ctx context.Context, event models.SchoolEvent) (int, error) {
	if !event.IsNoClass {
		return 0, nil
	}
	students, err := s.students.Active(ctx)
	if err != nil {
		return 0, err
	}
	dayStart := event.Date
	dayEnd := dayStart + int64(24*time.Hour/time.Millisecond) - 1

	marked := 0
	for _, student := range students {
		has, err := s.attendance.HasInRange(ctx, student.ID, dayStart, dayEnd)
		if err != nil {
			return marked, err
		}
		if has {
			continue
		}
		label, err := s.resolvePeriod(ctx, student.Grade, dayStart)
		if errors.Is(err, ErrCalendarNotConfigured) {
			label = sweepFallbackPeriod
		} else if err != nil {
			return marked, err
		}
		rec := models.AttendanceRecord{
			StudentID:      student.ID,
			Timestamp:      dayStart,
			Status:         models.StatusNotApplicable,
			Type:           models.TypeHomeroom,
			AcademicPeriod: label,
			Synced:         false,
		}
		if err := s.attendance.Record(ctx, rec); err != nil {
			return marked, err
		}
		marked++
	}
	if marked > 0 {
		s.triggerSync()
	}
	s.log.Info("no-class sweep done", zap.String("event", event.Title), zap.Int("marked", marked))
	return marked, nil
}
