package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
)

// Attendance is append-only: records are written locally with synced=false
// and shipped to the remote by the sync pass, not by a per-record mirror
// write. High-volume multi-writer data gets generated remote keys there, so
// nothing here ever overwrites another device's records.
type Attendance struct {
	db     *sql.DB
	remote remote.Store
	log    *zap.Logger
	broker *db.Broker
}

func NewAttendance(database *sql.DB, store remote.Store, log *zap.Logger, broker *db.Broker) *Attendance {
	return &Attendance{db: database, remote: store, log: log, broker: broker}
}

// Record appends one attendance record. A missing id gets a generated one.
func (r *Attendance) Record(ctx context.Context, rec models.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := db.InsertAttendance(ctx, r.db, rec); err != nil {
		return err
	}
	r.broker.Publish(db.TableAttendance)
	return nil
}

func (r *Attendance) Exists(ctx context.Context, studentID string, timestamp int64) (bool, error) {
	return db.AttendanceExists(ctx, r.db, studentID, timestamp)
}

func (r *Attendance) HasInRange(ctx context.Context, studentID string, from, to int64) (bool, error) {
	return db.HasAttendanceInRange(ctx, r.db, studentID, from, to)
}

func (r *Attendance) Unsynced(ctx context.Context) ([]models.AttendanceRecord, error) {
	return db.UnsyncedAttendance(ctx, r.db)
}

func (r *Attendance) MarkSynced(ctx context.Context, ids []string) error {
	if err := db.MarkAttendanceSynced(ctx, r.db, ids); err != nil {
		return err
	}
	r.broker.Publish(db.TableAttendance)
	return nil
}

func (r *Attendance) ByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	return db.ListAttendanceByStudent(ctx, r.db, studentID)
}

func (r *Attendance) InRange(ctx context.Context, from, to int64) ([]models.AttendanceRecord, error) {
	return db.ListAttendanceInRange(ctx, r.db, from, to)
}

func (r *Attendance) BySubjectInRange(ctx context.Context, subject string, from, to int64) ([]models.AttendanceRecord, error) {
	return db.ListAttendanceBySubjectInRange(ctx, r.db, subject, from, to)
}

func (r *Attendance) Count(ctx context.Context) (int, error) {
	return db.CountAttendance(ctx, r.db)
}

// ClearAll wipes the local table only; the remote history stays.
func (r *Attendance) ClearAll(ctx context.Context) error {
	if err := db.DeleteAllAttendance(ctx, r.db); err != nil {
		return err
	}
	r.broker.Publish(db.TableAttendance)
	return nil
}
