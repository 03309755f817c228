// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	go_metrics "github.com/rcrowley/go-metrics"
)

// Bridge exports a go-metrics registry as prometheus metrics.
// It describes nothing up front, so the registry treats it as unchecked.
type Bridge struct {
	r go_metrics.Registry
}

// NewBridge bridge over r
func NewBridge(r go_metrics.Registry) *Bridge {
	return &Bridge{r: r}
}

// Describe unchecked collector
func (b *Bridge) Describe(ch chan<- *prometheus.Desc) {}

// Collect snapshots every instrument of the registry
func (b *Bridge) Collect(ch chan<- prometheus.Metric) {
	b.r.Each(func(name string, i interface{}) {
		fq := MetricName(name)
		switch m := i.(type) {
		case go_metrics.Counter:
			ch <- constMetric(fq+"_total", prometheus.CounterValue, float64(m.Count()))
		case go_metrics.Gauge:
			ch <- constMetric(fq, prometheus.GaugeValue, float64(m.Value()))
		case go_metrics.GaugeFloat64:
			ch <- constMetric(fq, prometheus.GaugeValue, m.Value())
		case go_metrics.Meter:
			s := m.Snapshot()
			ch <- constMetric(fq+"_total", prometheus.CounterValue, float64(s.Count()))
			ch <- constMetric(fq+"_rate1m", prometheus.GaugeValue, s.Rate1())
		case go_metrics.Timer:
			s := m.Snapshot()
			ch <- constMetric(fq+"_count", prometheus.CounterValue, float64(s.Count()))
			ch <- constMetric(fq+"_mean_ns", prometheus.GaugeValue, s.Mean())
		}
	})
}

func constMetric(name string, vt prometheus.ValueType, v float64) prometheus.Metric {
	desc := prometheus.NewDesc(name, "go-metrics "+name, nil, nil)
	return prometheus.MustNewConstMetric(desc, vt, v)
}

// MetricName go-metrics name to a prometheus metric name
func MetricName(name string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", " ", "_")
	return Namespace + "_" + r.Replace(name)
}
