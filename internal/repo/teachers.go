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

type Teachers struct {
	db       *sql.DB
	remote   remote.Store
	log      *zap.Logger
	broker   *db.Broker
	dispatch Dispatcher
}

func NewTeachers(database *sql.DB, store remote.Store, log *zap.Logger, broker *db.Broker, dispatch Dispatcher) *Teachers {
	return &Teachers{db: database, remote: store, log: log, broker: broker, dispatch: dispatch}
}

func (r *Teachers) Get(ctx context.Context, id string) (*models.Teacher, error) {
	local, err := db.GetTeacherByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}
	if !remote.ValidKey(id) {
		return nil, nil
	}
	raw, err := r.remote.Get(ctx, pathTeachers+"/"+id)
	if err != nil {
		r.log.Warn("remote teacher lookup failed", zap.String("id", id), zap.Error(err))
		return nil, nil
	}
	if raw == nil {
		return nil, nil
	}
	return r.writeThrough(ctx, raw)
}

// GetByUsername falls back to a remote equality query on a local miss.
// Usernames are unique, but the query is taken first-match anyway.
func (r *Teachers) GetByUsername(ctx context.Context, username string) (*models.Teacher, error) {
	local, err := db.GetTeacherByUsername(ctx, r.db, username)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}
	matches, err := r.remote.QueryEqual(ctx, pathTeachers, "username", username)
	if err != nil {
		r.log.Warn("remote teacher username query failed", zap.String("username", username), zap.Error(err))
		return nil, nil
	}
	for _, raw := range matches {
		return r.writeThrough(ctx, raw)
	}
	return nil, nil
}

func (r *Teachers) writeThrough(ctx context.Context, raw json.RawMessage) (*models.Teacher, error) {
	var t models.Teacher
	if err := json.Unmarshal(raw, &t); err != nil {
		r.log.Warn("malformed remote teacher", zap.Error(err))
		return nil, nil
	}
	if err := db.UpsertTeacher(ctx, r.db, t); err != nil {
		return nil, err
	}
	r.broker.Publish(db.TableTeachers)
	return &t, nil
}

func (r *Teachers) Insert(ctx context.Context, t models.Teacher) error {
	if err := db.UpsertTeacher(ctx, r.db, t); err != nil {
		return err
	}
	r.broker.Publish(db.TableTeachers)
	remoteWrite(r.dispatch, r.log, "teacher insert", func(ctx context.Context) error {
		return r.remote.Set(ctx, pathTeachers+"/"+t.ID, t)
	})
	return nil
}

func (r *Teachers) Update(ctx context.Context, t models.Teacher) error {
	return r.Insert(ctx, t)
}

func (r *Teachers) All(ctx context.Context) ([]models.Teacher, error) {
	return db.ListTeachers(ctx, r.db)
}

func (r *Teachers) AdviserForClass(ctx context.Context, grade, section string) (*models.Teacher, error) {
	return db.GetAdviserForClass(ctx, r.db, grade, section)
}

// UpdateAdvisoryDetails writes the advisory columns and derived role as a
// partial update on both sides.
func (r *Teachers) UpdateAdvisoryDetails(ctx context.Context, id string, grade, section, track, startTime *string) error {
	if err := db.UpdateAdvisoryDetails(ctx, r.db, id, grade, section, track, startTime); err != nil {
		return err
	}
	r.broker.Publish(db.TableTeachers)
	role := models.RoleSubject
	if grade != nil {
		role = models.RoleAdviser
	}
	remoteWrite(r.dispatch, r.log, "teacher advisory details", func(ctx context.Context) error {
		return r.remote.Update(ctx, pathTeachers+"/"+id, map[string]any{
			"advisoryGrade":     grade,
			"advisorySection":   section,
			"advisoryTrack":     track,
			"advisoryStartTime": startTime,
			"role":              string(role),
		})
	})
	return nil
}

func (r *Teachers) UpdateCredentials(ctx context.Context, id, username, password string) error {
	if err := db.UpdateTeacherCredentials(ctx, r.db, id, username, password); err != nil {
		return err
	}
	r.broker.Publish(db.TableTeachers)
	remoteWrite(r.dispatch, r.log, "teacher credentials", func(ctx context.Context) error {
		return r.remote.Update(ctx, pathTeachers+"/"+id, map[string]any{
			"username":              username,
			"password":              password,
			"hasChangedCredentials": true,
		})
	})
	return nil
}

func (r *Teachers) Delete(ctx context.Context, id string) error {
	if err := db.DeleteTeacher(ctx, r.db, id); err != nil {
		return err
	}
	r.broker.Publish(db.TableTeachers)
	remoteWrite(r.dispatch, r.log, "teacher delete", func(ctx context.Context) error {
		return r.remote.Delete(ctx, pathTeachers+"/"+id)
	})
	return nil
}

// Watch emits the full teacher list on every change until ctx is cancelled.
func (r *Teachers) Watch(ctx context.Context) <-chan []models.Teacher {
	out := make(chan []models.Teacher, 1)
	signals, cancel := r.broker.Subscribe(db.TableTeachers)
	go func() {
		defer close(out)
		defer cancel()
		for {
			dbCtx, done := ctxutil.WithDBTimeout(ctx)
			list, err := db.ListTeachers(dbCtx, r.db)
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
