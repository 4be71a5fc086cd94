package repo

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
)

// Period owns the school-period singleton.
type Period struct {
	db       *sql.DB
	remote   remote.Store
	log      *zap.Logger
	broker   *db.Broker
	dispatch Dispatcher
}

func NewPeriod(database *sql.DB, store remote.Store, log *zap.Logger, broker *db.Broker, dispatch Dispatcher) *Period {
	return &Period{db: database, remote: store, log: log, broker: broker, dispatch: dispatch}
}

// Get returns nil when the calendar was never configured.
func (r *Period) Get(ctx context.Context) (*models.SchoolPeriod, error) {
	return db.GetSchoolPeriod(ctx, r.db)
}

func (r *Period) Set(ctx context.Context, p models.SchoolPeriod) error {
	if err := db.UpsertSchoolPeriod(ctx, r.db, p); err != nil {
		return err
	}
	r.broker.Publish(db.TableSchoolPeriod)
	remoteWrite(r.dispatch, r.log, "school period", func(ctx context.Context) error {
		return r.remote.Set(ctx, pathConfig, PeriodPayload(p, time.Now().UnixMilli()))
	})
	return nil
}

// PeriodPayload is the remote document shape of the calendar singleton.
// The sync pass uses the same shape for its push step.
func PeriodPayload(p models.SchoolPeriod, updatedAt int64) map[string]any {
	return map[string]any{
		"schoolYear": p.SchoolYear,
		"q1Start":    p.Q1Start, "q1End": p.Q1End,
		"q2Start": p.Q2Start, "q2End": p.Q2End,
		"q3Start": p.Q3Start, "q3End": p.Q3End,
		"q4Start": p.Q4Start, "q4End": p.Q4End,
		"shsQ1Start": p.ShsQ1Start, "shsQ1End": p.ShsQ1End,
		"shsQ2Start": p.ShsQ2Start, "shsQ2End": p.ShsQ2End,
		"shsQ3Start": p.ShsQ3Start, "shsQ3End": p.ShsQ3End,
		"shsQ4Start": p.ShsQ4Start, "shsQ4End": p.ShsQ4End,
		"updatedAt": updatedAt,
	}
}
