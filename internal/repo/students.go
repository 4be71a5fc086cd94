package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/ctxutil"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
)

type Students struct {
	db       *sql.DB
	remote   remote.Store
	log      *zap.Logger
	broker   *db.Broker
	dispatch Dispatcher
}

func NewStudents(database *sql.DB, store remote.Store, log *zap.Logger, broker *db.Broker, dispatch Dispatcher) *Students {
	return &Students{db: database, remote: store, log: log, broker: broker, dispatch: dispatch}
}

// Get reads local first; on a miss it tries one remote read-by-key and
// writes the hit through into the local store. Remote errors degrade to
// not-found.
func (r *Students) Get(ctx context.Context, id string) (*models.Student, error) {
	local, err := db.GetStudentByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}
	if !remote.ValidKey(id) {
		return nil, nil
	}
	raw, err := r.remote.Get(ctx, pathStudents+"/"+id)
	if err != nil {
		r.log.Warn("remote student lookup failed", zap.String("id", id), zap.Error(err))
		return nil, nil
	}
	if raw == nil {
		return nil, nil
	}
	return r.writeThrough(ctx, raw)
}

// FindByLogin chains three lookups: local, remote by id (only for logins
// that are legal keys), then a remote username query. First match wins.
func (r *Students) FindByLogin(ctx context.Context, login string) (*models.Student, error) {
	local, err := db.FindStudentByLogin(ctx, r.db, login)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}

	if remote.ValidKey(login) {
		raw, err := r.remote.Get(ctx, pathStudents+"/"+login)
		if err != nil {
			r.log.Warn("remote student id lookup failed", zap.String("login", login), zap.Error(err))
		} else if raw != nil {
			return r.writeThrough(ctx, raw)
		}
	}

	matches, err := r.remote.QueryEqual(ctx, pathStudents, "username", login)
	if err != nil {
		r.log.Warn("remote student username query failed", zap.String("login", login), zap.Error(err))
		return nil, nil
	}
	for _, raw := range matches {
		return r.writeThrough(ctx, raw)
	}
	return nil, nil
}

func (r *Students) writeThrough(ctx context.Context, raw json.RawMessage) (*models.Student, error) {
	var s models.Student
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.Warn("malformed remote student", zap.Error(err))
		return nil, nil
	}
	if err := db.UpsertStudent(ctx, r.db, s); err != nil {
		return nil, err
	}
	r.broker.Publish(db.TableStudents)
	return &s, nil
}

func (r *Students) Insert(ctx context.Context, s models.Student) error {
	if err := db.UpsertStudent(ctx, r.db, s); err != nil {
		return err
	}
	r.broker.Publish(db.TableStudents)
	remoteWrite(r.dispatch, r.log, "student insert", func(ctx context.Context) error {
		return r.remote.Set(ctx, pathStudents+"/"+s.ID, s)
	})
	return nil
}

// Update has the same overwrite semantics as Insert.
func (r *Students) Update(ctx context.Context, s models.Student) error {
	return r.Insert(ctx, s)
}

// InsertAll bulk-writes locally, then mirrors the whole batch with a single
// multi-path update instead of one round trip per student.
func (r *Students) InsertAll(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	if err := db.UpsertStudents(ctx, r.db, students); err != nil {
		return err
	}
	r.broker.Publish(db.TableStudents)
	remoteWrite(r.dispatch, r.log, "student bulk insert", func(ctx context.Context) error {
		fields := make(map[string]any, len(students))
		for _, s := range students {
			fields["/"+s.ID] = s
		}
		return r.remote.Update(ctx, pathStudents, fields)
	})
	return nil
}

// Archive flips only the flag, locally and remotely, so concurrent remote
// edits to other fields are not clobbered.
func (r *Students) Archive(ctx context.Context, id string) error {
	return r.setArchived(ctx, id, true)
}

func (r *Students) Restore(ctx context.Context, id string) error {
	return r.setArchived(ctx, id, false)
}

func (r *Students) setArchived(ctx context.Context, id string, archived bool) error {
	if err := db.SetStudentArchived(ctx, r.db, id, archived); err != nil {
		return err
	}
	r.broker.Publish(db.TableStudents)
	remoteWrite(r.dispatch, r.log, "student archive flag", func(ctx context.Context) error {
		return r.remote.Update(ctx, pathStudents+"/"+id, map[string]any{"isArchived": archived})
	})
	return nil
}

func (r *Students) UpdateCredentials(ctx context.Context, id, username, password string) error {
	if err := db.UpdateStudentCredentials(ctx, r.db, id, username, password); err != nil {
		return err
	}
	r.broker.Publish(db.TableStudents)
	remoteWrite(r.dispatch, r.log, "student credentials", func(ctx context.Context) error {
		return r.remote.Update(ctx, pathStudents+"/"+id, map[string]any{
			"username":              username,
			"password":              password,
			"hasChangedCredentials": true,
		})
	})
	return nil
}

func (r *Students) Delete(ctx context.Context, id string) error {
	if err := db.DeleteStudent(ctx, r.db, id); err != nil {
		return err
	}
	r.broker.Publish(db.TableStudents)
	remoteWrite(r.dispatch, r.log, "student delete", func(ctx context.Context) error {
		return r.remote.Delete(ctx, pathStudents+"/"+id)
	})
	return nil
}

func (r *Students) All(ctx context.Context) ([]models.Student, error) {
	return db.ListStudents(ctx, r.db)
}

func (r *Students) Active(ctx context.Context) ([]models.Student, error) {
	return db.ListActiveStudents(ctx, r.db)
}

func (r *Students) Archived(ctx context.Context) ([]models.Student, error) {
	return db.ListArchivedStudents(ctx, r.db)
}

func (r *Students) ByClass(ctx context.Context, grade, section string) ([]models.Student, error) {
	return db.ListStudentsByClass(ctx, r.db, grade, section)
}

func (r *Students) AllByClass(ctx context.Context, grade, section string) ([]models.Student, error) {
	return db.ListAllStudentsByClass(ctx, r.db, grade, section)
}

func (r *Students) CountByClass(ctx context.Context, grade, section string) (int, error) {
	return db.CountStudentsByClass(ctx, r.db, grade, section)
}

// WatchActive emits the current active roster immediately and again after
// every mutation of the students table, until ctx is cancelled.
func (r *Students) WatchActive(ctx context.Context) <-chan []models.Student {
	out := make(chan []models.Student, 1)
	signals, cancel := r.broker.Subscribe(db.TableStudents)
	go func() {
		defer close(out)
		defer cancel()
		for {
			dbCtx, done := ctxutil.WithDBTimeout(ctx)
			list, err := db.ListActiveStudents(dbCtx, r.db)
			done()
			if err == nil {
				select {
				case out <- list:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-signals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
