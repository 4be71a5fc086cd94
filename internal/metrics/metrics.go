package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SyncPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendify", Name: "sync_passes_total", Help: "Completed sync passes by result",
	}, []string{"result"})
	SyncStepErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendify", Name: "sync_step_errors_total", Help: "Sync step failures",
	}, []string{"step"})
	SyncPassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendify", Name: "sync_pass_duration_seconds", Help: "Full pass duration",
		Buckets: prometheus.DefBuckets,
	})
	AttendancePushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attendify", Name: "attendance_pushed_total", Help: "Attendance records pushed to remote",
	})
	AttendancePulled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attendify", Name: "attendance_pulled_total", Help: "Attendance records pulled from remote",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendify", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SyncPasses, SyncStepErrors, SyncPassDuration,
		AttendancePushed, AttendancePulled, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
