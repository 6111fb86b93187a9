package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// Metrics exposes poll-cycle instrumentation for Prometheus scraping.
type Metrics struct {
	cycles        prometheus.Counter
	cycleErrors   prometheus.Counter
	cycleDuration prometheus.Histogram
	mailboxCount  prometheus.Gauge
	averageUsage  prometheus.Gauge
	statusCounts  *prometheus.GaugeVec
	probeLatency  prometheus.Gauge
}

// New registers the collectors on reg; nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "mailcow_monitor_cycles_total",
			Help: "Total number of completed poll cycles",
		}),
		cycleErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "mailcow_monitor_cycle_errors_total",
			Help: "Total number of cycles with a failed mailbox fetch",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailcow_monitor_cycle_duration_seconds",
			Help:    "Poll cycle duration",
			Buckets: prometheus.DefBuckets,
		}),
		mailboxCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mailcow_monitor_mailboxes",
			Help: "Active mailboxes in the last completed cycle",
		}),
		averageUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mailcow_monitor_average_usage_percent",
			Help: "Quota-weighted average usage in the last completed cycle",
		}),
		statusCounts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mailcow_monitor_mailbox_status",
			Help: "Mailboxes per quota status in the last completed cycle",
		}, []string{"status"}),
		probeLatency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mailcow_monitor_probe_response_ms",
			Help: "Upstream API probe round trip in milliseconds",
		}),
	}
}

// ObserveCycle records one completed cycle.
func (m *Metrics) ObserveCycle(summary model.Summary, durationSeconds float64) {
	m.cycles.Inc()
	m.cycleDuration.Observe(durationSeconds)
	if summary.MailboxSummary.FetchFailed {
		m.cycleErrors.Inc()
		return
	}
	m.mailboxCount.Set(float64(summary.MailboxSummary.TotalMailboxes))
	m.averageUsage.Set(summary.MailboxSummary.AverageUsagePercent)
	m.statusCounts.WithLabelValues(string(model.StatusHealthy)).Set(float64(summary.MailboxSummary.HealthyCount))
	m.statusCounts.WithLabelValues(string(model.StatusWarning)).Set(float64(summary.MailboxSummary.WarningCount))
	m.statusCounts.WithLabelValues(string(model.StatusCritical)).Set(float64(summary.MailboxSummary.CriticalCount))
	m.probeLatency.Set(summary.APIHealth.ResponseTimeMs)
}
