package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kilianp07/spotflux/core/export"
)

// Config defines where run metrics are pushed. Recording is disabled when
// PushgatewayURL is empty.
type Config struct {
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Job == "" {
		c.Job = "spotflux"
	}
}

// Enabled reports whether a Pushgateway is configured.
func (c Config) Enabled() bool { return c.PushgatewayURL != "" }

// NopRecorder discards run outcomes.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, export.Result, time.Duration, error) error { return nil }

// PushRecorder pushes run counters to a Prometheus Pushgateway at the end of
// the run. A one-shot batch job pushes instead of serving /metrics.
type PushRecorder struct {
	fetched  prometheus.Gauge
	written  prometheus.Gauge
	skipped  prometheus.Gauge
	success  prometheus.Gauge
	duration prometheus.Gauge
	pusher   *push.Pusher
}

// NewPushRecorder builds a PushRecorder on its own registry.
func NewPushRecorder(cfg Config) *PushRecorder {
	cfg.SetDefaults()
	reg := prometheus.NewRegistry()
	r := &PushRecorder{
		fetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotflux_intervals_fetched",
			Help: "Number of intervals normalized from the provider document",
		}),
		written: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotflux_intervals_written",
			Help: "Number of new intervals written to the sink",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotflux_intervals_skipped",
			Help: "Number of intervals skipped as already written",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotflux_run_success",
			Help: "1 if the run completed, 0 otherwise",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spotflux_run_duration_seconds",
			Help: "Wall-clock duration of the run",
		}),
	}
	reg.MustRegister(r.fetched, r.written, r.skipped, r.success, r.duration)
	r.pusher = push.New(cfg.PushgatewayURL, cfg.Job).Gatherer(reg)
	return r
}

// RecordRun pushes the outcome of one export cycle.
func (r *PushRecorder) RecordRun(ctx context.Context, res export.Result, dur time.Duration, runErr error) error {
	r.fetched.Set(float64(res.Fetched))
	r.written.Set(float64(res.Written))
	r.skipped.Set(float64(res.Skipped))
	if runErr == nil {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
	r.duration.Set(dur.Seconds())
	return r.pusher.PushContext(ctx)
}
