// Package app hosts the process-level surfaces: the small HTTP server
// that exposes health and metrics for the kiosk device.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/ctxutil"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/metrics"
)

type HTTPServer struct {
	srv *http.Server
}

func StartHTTP(ctx context.Context, addr string, db *sql.DB, api *API) *HTTPServer {
	mux := http.NewServeMux()
	if api != nil {
		api.Routes(mux)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := ctxutil.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = srv.ListenAndServe() // closed via Shutdown below
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
