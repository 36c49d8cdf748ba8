package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "tomatick"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	commands    *prom.CounterVec
	latency     *prom.HistogramVec
	completions *prom.CounterVec
	queueDepth  prom.Gauge
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ipc_commands_total",
			Help:      "Control commands received, by kind and outcome",
		}, []string{"kind", "outcome"}),
		latency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "ipc_response_seconds",
			Help:      "Time from enqueueing a command to receiving its response",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"kind"}),
		completions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Naturally completed sessions, by session type",
		}, []string{"session_type"}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "ipc_queue_depth",
			Help:      "Commands waiting for the control loop",
		}),
	}
	reg.MustRegister(pr.commands, pr.latency, pr.completions, pr.queueDepth)
	return pr
}

func (p *PrometheusRecorder) IncCommand(kind string, outcome Outcome) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveResponseLatency(kind string, d time.Duration) {
	if p == nil {
		return
	}
	p.latency.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCompletion(sessionType string) {
	if p == nil {
		return
	}
	p.completions.WithLabelValues(sessionType).Inc()
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}
