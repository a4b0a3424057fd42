package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a script run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Interpreter metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ScriptsTotal    *prometheus.CounterVec
	CleanupsTotal   *prometheus.CounterVec

	// Browser metrics
	NavigationsTotal *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	RefreshHops      prometheus.Counter
	SubmissionsTotal *prometheus.CounterVec
}

// NewMetrics creates a collector bound to its own registry so several
// interpreters can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twill_commands_total",
				Help: "Total number of script commands executed",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "twill_command_duration_seconds",
				Help:    "Script command duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"command"},
		),
		ScriptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twill_scripts_total",
				Help: "Total number of script frames executed",
			},
			[]string{"status"},
		),
		CleanupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twill_cleanups_total",
				Help: "Total number of cleanup scripts executed",
			},
			[]string{"status"},
		),
		NavigationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twill_navigations_total",
				Help: "Total number of browser journeys",
			},
			[]string{"kind", "status"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "twill_fetch_duration_seconds",
				Help:    "HTTP fetch duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RefreshHops: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "twill_meta_refresh_hops_total",
				Help: "Total number of meta refresh redirects followed",
			},
		),
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twill_form_submissions_total",
				Help: "Total number of form submissions",
			},
			[]string{"method", "status"},
		),
	}
}

// ObserveCommand records one dispatched command.
func (m *Metrics) ObserveCommand(command string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, status(err)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveScript records one finished script frame.
func (m *Metrics) ObserveScript(err error) {
	if m == nil {
		return
	}
	m.ScriptsTotal.WithLabelValues(status(err)).Inc()
}

// ObserveCleanup records one cleanup script run.
func (m *Metrics) ObserveCleanup(err error) {
	if m == nil {
		return
	}
	m.CleanupsTotal.WithLabelValues(status(err)).Inc()
}

// ObserveNavigation records one journey (open, follow, reload, back).
func (m *Metrics) ObserveNavigation(kind string, err error) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(kind, status(err)).Inc()
}

// ObserveFetch records the duration of one HTTP exchange.
func (m *Metrics) ObserveFetch(method string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncRefreshHops counts a followed meta refresh.
func (m *Metrics) IncRefreshHops() {
	if m == nil {
		return
	}
	m.RefreshHops.Inc()
}

// ObserveSubmission records one form submission.
func (m *Metrics) ObserveSubmission(method string, err error) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(method, status(err)).Inc()
}

// WriteTextfile writes the current metric values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
