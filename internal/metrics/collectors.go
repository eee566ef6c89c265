package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets covers model latencies from 100ms to 2 minutes.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Collectors groups the Prometheus instruments for orchestration runs.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	ModelRequests  *prometheus.CounterVec
	ModelLatency   *prometheus.HistogramVec
	ToolExecutions *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	Runs           *prometheus.CounterVec
}

// NewCollectors creates the instruments and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ModelRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnflow_model_requests_total",
				Help: "Model service calls by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		ModelLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turnflow_model_latency_seconds",
				Help:    "Model service call latency",
				Buckets: LLMBuckets,
			},
			[]string{"provider"},
		),
		ToolExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnflow_tool_executions_total",
				Help: "Tool executions by name and outcome",
			},
			[]string{"tool", "status"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnflow_transitions_total",
				Help: "State machine transitions",
			},
			[]string{"from", "to", "trigger"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turnflow_runs_total",
				Help: "Finished orchestration runs by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.ModelRequests, c.ModelLatency, c.ToolExecutions, c.Transitions, c.Runs)
	}
	return c
}

func (c *Collectors) ObserveModelCall(provider string, d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.ModelRequests.WithLabelValues(provider, status).Inc()
	c.ModelLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (c *Collectors) ObserveTool(name string, failed bool) {
	if c == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	c.ToolExecutions.WithLabelValues(name, status).Inc()
}

func (c *Collectors) ObserveTransition(from, to, trigger string) {
	if c == nil {
		return
	}
	c.Transitions.WithLabelValues(from, to, trigger).Inc()
}

// ObserveRun counts a finished run by outcome: "completed", "error",
// "failed" (port error or cancellation) or "abandoned" (consumer stopped early).
func (c *Collectors) ObserveRun(outcome string) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(outcome).Inc()
}
