// Package metrics exposes Prometheus counters for the sync engine. All
// recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for projectsync
type Metrics struct {
	BOQSyncs            *prometheus.CounterVec
	TaskSyncs           *prometheus.CounterVec
	EarlyWarnings       *prometheus.CounterVec
	ReScheduleProposals *prometheus.CounterVec
	SyncAllDuration     prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		BOQSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectsync_boq_sync_total",
				Help: "Total number of BOQ item syncs by outcome",
			},
			[]string{"status"},
		),
		TaskSyncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectsync_task_sync_total",
				Help: "Total number of schedule task syncs by outcome",
			},
			[]string{"status"},
		),
		EarlyWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectsync_early_warnings_total",
				Help: "Total number of active early warnings raised by risk level",
			},
			[]string{"risk"},
		),
		ReScheduleProposals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectsync_reschedule_proposals_total",
				Help: "Total number of re-scheduling proposals by approval status",
			},
			[]string{"approval"},
		),
		SyncAllDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "projectsync_sync_all_duration_seconds",
				Help:    "Duration of a full project resync in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler for a specific registry
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func outcome(ok bool) string {
	if ok {
		return "synced"
	}
	return "error"
}

func (m *Metrics) BOQSynced(ok bool) {
	if m == nil {
		return
	}
	m.BOQSyncs.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) TaskSynced(ok bool) {
	if m == nil {
		return
	}
	m.TaskSyncs.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) WarningRaised(risk string) {
	if m == nil {
		return
	}
	m.EarlyWarnings.WithLabelValues(risk).Inc()
}

func (m *Metrics) ReScheduleProposed(approval string) {
	if m == nil {
		return
	}
	m.ReScheduleProposals.WithLabelValues(approval).Inc()
}

// SyncAllFinished records the time since start.
func (m *Metrics) SyncAllFinished(start time.Time) {
	if m == nil {
		return
	}
	m.SyncAllDuration.Observe(time.Since(start).Seconds())
}
