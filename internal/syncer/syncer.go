// Package syncer runs the two-way reconciliation pass between the local
// store and the remote mirror: teachers, students, attendance, then the
// school-period config.
//
// State types (teachers, students, config) are pushed whole and pulled
// whole, last writer wins on both sides. Attendance is append-only: only
// unsynced rows are pushed, under generated keys so devices never collide,
// and pulls deduplicate on (studentId, timestamp). Every step is
// independently idempotent, so a pass that dies halfway is safe to retry
// from scratch.
package syncer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/metrics"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/notify"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
)

const (
	pathTeachers   = "teachers"
	pathStudents   = "students"
	pathAttendance = "attendance"
	pathConfig     = "config/schoolPeriod"
)

type Engine struct {
	db         *sql.DB
	remote     remote.Store
	attendance *repo.Attendance
	period     *repo.Period
	broker     *db.Broker
	notifier   notify.Notifier
	log        *zap.Logger
	deviceID   string
	now        func() time.Time
}

func New(database *sql.DB, store remote.Store, attendance *repo.Attendance, period *repo.Period,
	broker *db.Broker, notifier notify.Notifier, log *zap.Logger, deviceID string) *Engine {
	return &Engine{
		db:         database,
		remote:     store,
		attendance: attendance,
		period:     period,
		broker:     broker,
		notifier:   notifier,
		log:        log,
		deviceID:   deviceID,
		now:        time.Now,
	}
}

// RunOnce runs one complete reconciliation pass. Any step failure aborts
// the remaining steps; completed steps are not rolled back, and the caller
// should treat the error as retryable. A fully successful pass records the
// last-sync timestamp.
func (e *Engine) RunOnce(ctx context.Context) error {
	start := e.now()
	e.notifier.Notify("Sync started", "Synchronizing data...", false)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"teachers", e.syncTeachers},
		{"students", e.syncStudents},
		{"attendance", e.syncAttendance},
		{"config", e.syncConfig},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			metrics.SyncStepErrors.WithLabelValues(step.name).Inc()
			metrics.SyncPasses.WithLabelValues("retry").Inc()
			e.notifier.Notify("Sync failed", "Could not sync data. Check connection.", true)
			return fmt.Errorf("sync %s: %w", step.name, err)
		}
	}

	if err := db.SetLastSyncAt(ctx, e.db, e.now()); err != nil {
		metrics.SyncStepErrors.WithLabelValues("finalize").Inc()
		metrics.SyncPasses.WithLabelValues("retry").Inc()
		e.notifier.Notify("Sync failed", "Could not sync data. Check connection.", true)
		return fmt.Errorf("sync finalize: %w", err)
	}
	metrics.SyncPasses.WithLabelValues("ok").Inc()
	metrics.SyncPassDuration.Observe(e.now().Sub(start).Seconds())
	e.notifier.Notify("Sync completed", "All data is up to date.", false)
	return nil
}

// syncTeachers force-pushes all local rows in one batched update, then
// pulls the remote table and writes every row through into the local store.
func (e *Engine) syncTeachers(ctx context.Context) error {
	locals, err := db.ListTeachers(ctx, e.db)
	if err != nil {
		return err
	}
	if len(locals) > 0 {
		fields := make(map[string]any, len(locals))
		for _, t := range locals {
			fields["/"+t.ID] = t
		}
		if err := e.remote.Update(ctx, pathTeachers, fields); err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}

	raw, err := e.remote.Get(ctx, pathTeachers)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if raw == nil {
		return nil
	}
	var remotes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &remotes); err != nil {
		return fmt.Errorf("pull: decode: %w", err)
	}
	changed := false
	for key, child := range remotes {
		var t models.Teacher
		if err := json.Unmarshal(child, &t); err != nil || t.ID == "" {
			e.log.Warn("skipping malformed remote teacher", zap.String("key", key))
			continue
		}
		if err := db.UpsertTeacher(ctx, e.db, t); err != nil {
			return err
		}
		changed = true
	}
	if changed {
		e.broker.Publish(db.TableTeachers)
	}
	e.log.Debug("teachers synced", zap.Int("pushed", len(locals)), zap.Int("pulled", len(remotes)))
	return nil
}

func (e *Engine) syncStudents(ctx context.Context) error {
	locals, err := db.ListStudents(ctx, e.db)
	if err != nil {
		return err
	}
	if len(locals) > 0 {
		fields := make(map[string]any, len(locals))
		for _, s := range locals {
			fields["/"+s.ID] = s
		}
		if err := e.remote.Update(ctx, pathStudents, fields); err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}

	raw, err := e.remote.Get(ctx, pathStudents)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if raw == nil {
		return nil
	}
	var remotes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &remotes); err != nil {
		return fmt.Errorf("pull: decode: %w", err)
	}
	var pulled []models.Student
	for key, child := range remotes {
		var s models.Student
		if err := json.Unmarshal(child, &s); err != nil || s.ID == "" {
			e.log.Warn("skipping malformed remote student", zap.String("key", key))
			continue
		}
		pulled = append(pulled, s)
	}
	if len(pulled) > 0 {
		if err := db.UpsertStudents(ctx, e.db, pulled); err != nil {
			return err
		}
		e.broker.Publish(db.TableStudents)
	}
	e.log.Debug("students synced", zap.Int("pushed", len(locals)), zap.Int("pulled", len(pulled)))
	return nil
}

// attendanceDoc is the wire shape of one attendance record. Remote keys are
// store-generated, so identity rides inside the document as
// (studentId, timestamp).
type attendanceDoc struct {
	StudentID      string `json:"studentId"`
	Timestamp      int64  `json:"timestamp"`
	Status         string `json:"status"`
	Type           string `json:"type"`
	Subject        string `json:"subject"`
	AcademicPeriod string `json:"academicPeriod"`
	UpdatedAt      int64  `json:"updatedAt"`
	DeviceID       string `json:"deviceId"`
}

// syncAttendance pushes the unsynced delta under generated keys, then pulls
// everything and inserts only records not already present locally.
func (e *Engine) syncAttendance(ctx context.Context) error {
	unsynced, err := e.attendance.Unsynced(ctx)
	if err != nil {
		return err
	}
	for _, rec := range unsynced {
		subject := ""
		if rec.Subject != nil {
			subject = *rec.Subject
		}
		doc := attendanceDoc{
			StudentID:      rec.StudentID,
			Timestamp:      rec.Timestamp,
			Status:         rec.Status,
			Type:           rec.Type,
			Subject:        subject,
			AcademicPeriod: rec.AcademicPeriod,
			UpdatedAt:      e.now().UnixMilli(),
			DeviceID:       e.deviceID,
		}
		if _, err := e.remote.Push(ctx, pathAttendance, doc); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		// Mark per record: a crash between records re-pushes at most the
		// tail, and the pull side dedups those anyway.
		if err := e.attendance.MarkSynced(ctx, []string{rec.ID}); err != nil {
			return err
		}
		metrics.AttendancePushed.Inc()
	}

	raw, err := e.remote.Get(ctx, pathAttendance)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if raw == nil {
		return nil
	}
	var remotes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &remotes); err != nil {
		return fmt.Errorf("pull: decode: %w", err)
	}
	pulled := 0
	for key, child := range remotes {
		var doc attendanceDoc
		if err := json.Unmarshal(child, &doc); err != nil || doc.StudentID == "" || doc.Timestamp == 0 {
			e.log.Warn("skipping malformed remote attendance", zap.String("key", key))
			continue
		}
		exists, err := e.attendance.Exists(ctx, doc.StudentID, doc.Timestamp)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if doc.Status == "" {
			doc.Status = models.StatusPresent
		}
		if doc.Type == "" {
			doc.Type = models.TypeHomeroom
		}
		var subject *string
		if doc.Subject != "" {
			subject = &doc.Subject
		}
		rec := models.AttendanceRecord{
			StudentID:      doc.StudentID,
			Timestamp:      doc.Timestamp,
			Status:         doc.Status,
			Type:           doc.Type,
			Subject:        subject,
			AcademicPeriod: doc.AcademicPeriod,
			Synced:         true,
		}
		if err := e.attendance.Record(ctx, rec); err != nil {
			return err
		}
		pulled++
		metrics.AttendancePulled.Inc()
	}
	e.log.Debug("attendance synced", zap.Int("pushed", len(unsynced)), zap.Int("pulled", pulled))
	return nil
}

// syncConfig round-trips the calendar singleton: push the local value if it
// exists, then overwrite local with whatever the remote holds after the
// push.
func (e *Engine) syncConfig(ctx context.Context) error {
	local, err := e.period.Get(ctx)
	if err != nil {
		return err
	}
	if local != nil {
		payload := repo.PeriodPayload(*local, e.now().UnixMilli())
		if err := e.remote.Set(ctx, pathConfig, payload); err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}

	raw, err := e.remote.Get(ctx, pathConfig)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if raw == nil {
		return nil
	}
	var p models.SchoolPeriod
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("pull: decode: %w", err)
	}
	if err := db.UpsertSchoolPeriod(ctx, e.db, p); err != nil {
		return err
	}
	e.broker.Publish(db.TableSchoolPeriod)
	return nil
}
