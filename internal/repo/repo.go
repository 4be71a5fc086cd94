// Package repo mediates every entity mutation: a synchronous local write
// defines the result of the call, then a best-effort remote write is
// dispatched in the background. Remote failures are logged and swallowed;
// the periodic sync pass reconciles whatever a best-effort write missed.
package repo

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Remote paths mirrored by the repositories.
const (
	pathStudents = "students"
	pathTeachers = "teachers"
	pathEvents   = "events"
	pathConfig   = "config/schoolPeriod"
)

// Dispatcher runs the remote phase of a two-phase write. The production
// dispatcher runs it on its own goroutine; tests substitute a synchronous
// one to observe the mirror deterministically.
type Dispatcher func(fn func(ctx context.Context))

// AsyncDispatcher runs remote writes in the background with a timeout,
// detached from the caller's context: the local write already succeeded and
// cancelling the caller must not cancel the mirror write.
func AsyncDispatcher(timeout time.Duration) Dispatcher {
	return func(fn func(ctx context.Context)) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			fn(ctx)
		}()
	}
}

// SyncDispatcher runs remote writes inline. Used in tests.
func SyncDispatcher() Dispatcher {
	return func(fn func(ctx context.Context)) {
		fn(context.Background())
	}
}

func remoteWrite(dispatch Dispatcher, log *zap.Logger, op string, fn func(ctx context.Context) error) {
	dispatch(func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			log.Warn("remote write failed, sync pass will reconcile",
				zap.String("op", op), zap.Error(err))
		}
	})
}
