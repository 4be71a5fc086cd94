package jobs

import (
	"context"
	"time"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/ctxutil"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	r.EveryAndOn(interval, nil, name, fn)
}

// EveryAndOn runs fn on a ticker and additionally whenever the trigger
// channel fires. Trigger sends arriving while a run is in flight collapse
// into the next run.
func (r *Runner) EveryAndOn(interval time.Duration, trigger <-chan struct{}, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
			case <-trigger:
			}
			start := time.Now()
			if err := fn(ctxutil.WithOp(r.ctx, name)); err != nil {
				jobErrors.WithLabelValues(name).Inc()
			}
			jobRuns.WithLabelValues(name).Inc()
			jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
	}()
}
