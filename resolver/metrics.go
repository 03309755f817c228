// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"github.com/cognumbers/cognumbers/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics prometheus collectors of the orchestrator
type Metrics struct {
	Attempts *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Duration prometheus.Histogram
	InFlight prometheus.Gauge
}

// NewMetrics unregistered collectors
func NewMetrics() *Metrics {
	return &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "resolution",
			Name:      "attempts_total",
			Help:      "Resolution attempts by final phase.",
		}, []string{"phase"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "resolution",
			Name:      "failures_total",
			Help:      "Failed resolution attempts by failing phase and error kind.",
		}, []string{"phase", "kind"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "resolution",
			Name:      "duration_seconds",
			Help:      "Duration of resolution attempts.",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "resolution",
			Name:      "in_flight",
			Help:      "Resolution attempts currently running.",
		}),
	}
}

// Metrics implements metrics.Collector
func (m *Metrics) Metrics() []prometheus.Collector {
	return metrics.PrometheusCollectorsFromFields(m)
}
