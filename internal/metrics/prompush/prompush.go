// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common pipeline labels (job, step, kind, status) onto
//     Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends without changes to the core pipeline.
package prompush

import (
	"fmt"

	"transform/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Step-level metrics
	stepCounter  *prometheus.CounterVec // "transform_step_total"
	stepDuration *prometheus.SummaryVec // "transform_step_duration_seconds"

	// Row- and output-level metrics
	rowCounter     *prometheus.CounterVec // "transform_rows_total"
	outputCounter  *prometheus.CounterVec // "transform_output_total"
	outputDuration *prometheus.SummaryVec // "transform_output_duration_seconds"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "transform"
	}

	reg := prometheus.NewRegistry()

	// step, kind, status are dynamic labels; job is the Pushgateway
	// grouping key rather than a per-metric label.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_step_total",
			Help: "Total number of transform step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "transform_step_duration_seconds",
			Help:       "Duration of transform steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)

	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_rows_total",
			Help: "Row-level counts per kind (loaded, written).",
		},
		[]string{"kind"},
	)

	outputCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transform_output_total",
			Help: "Total number of output destination writes, partitioned by kind and status.",
		},
		[]string{"kind", "status"},
	)
	outputDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "transform_output_duration_seconds",
			Help:       "Duration of output destination writes in seconds, partitioned by kind and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"kind", "status"},
	)

	if err := reg.Register(stepCounter); err != nil {
		return nil, fmt.Errorf("prompush: register step counter: %w", err)
	}
	if err := reg.Register(stepDuration); err != nil {
		return nil, fmt.Errorf("prompush: register step summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(outputCounter); err != nil {
		return nil, fmt.Errorf("prompush: register output counter: %w", err)
	}
	if err := reg.Register(outputDuration); err != nil {
		return nil, fmt.Errorf("prompush: register output summary: %w", err)
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
		rowCounter:     rowCounter,
		outputCounter:  outputCounter,
		outputDuration: outputDuration,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "transform_step_total":
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "transform_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case "transform_output_total":
		if b.outputCounter == nil {
			return
		}
		b.outputCounter.WithLabelValues(labels["kind"], labels["status"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case "transform_step_duration_seconds":
		if b.stepDuration == nil {
			return
		}
		b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)

	case "transform_output_duration_seconds":
		if b.outputDuration == nil {
			return
		}
		b.outputDuration.WithLabelValues(labels["kind"], labels["status"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
