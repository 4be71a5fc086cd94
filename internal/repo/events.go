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

// Events holds calendar exceptions (suspensions, holidays, activities).
type Events struct {
	db       *sql.DB
	remote   remote.Store
	log      *zap.Logger
	broker   *db.Broker
	dispatch Dispatcher
}

func NewEvents(database *sql.DB, store remote.Store, log *zap.Logger, broker *db.Broker, dispatch Dispatcher) *Events {
	return &Events{db: database, remote: store, log: log, broker: broker, dispatch: dispatch}
}

// Upsert stores the event, assigning an id when the caller left it empty,
// and returns the event as stored so callers can address it afterwards.
func (r *Events) Upsert(ctx context.Context, e models.SchoolEvent) (models.SchoolEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := db.UpsertSchoolEvent(ctx, r.db, e); err != nil {
		return models.SchoolEvent{}, err
	}
	r.broker.Publish(db.TableSchoolEvents)
	remoteWrite(r.dispatch, r.log, "school event", func(ctx context.Context) error {
		return r.remote.Set(ctx, pathEvents+"/"+e.ID, e)
	})
	return e, nil
}

func (r *Events) Get(ctx context.Context, id string) (*models.SchoolEvent, error) {
	return db.GetSchoolEvent(ctx, r.db, id)
}

func (r *Events) All(ctx context.Context) ([]models.SchoolEvent, error) {
	return db.ListSchoolEvents(ctx, r.db)
}

func (r *Events) OnDay(ctx context.Context, day int64) ([]models.SchoolEvent, error) {
	return db.EventsOnDay(ctx, r.db, day)
}

func (r *Events) Delete(ctx context.Context, id string) error {
	if err := db.DeleteSchoolEvent(ctx, r.db, id); err != nil {
		return err
	}
	r.broker.Publish(db.TableSchoolEvents)
	remoteWrite(r.dispatch, r.log, "school event delete", func(ctx context.Context) error {
		return r.remote.Delete(ctx, pathEvents+"/"+id)
	})
	return nil
}
