// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 运行统计, go-metrics 记录, 日志或 prometheus 输出
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	go_metrics "github.com/rcrowley/go-metrics"
)

var mlog = log.New("module", "metrics")

// Namespace prometheus namespace
var Namespace = "cognumbers"

// go-metrics instruments shared by the packages
var (
	RegistryReads    = go_metrics.NewRegisteredMeter("registry/reads", nil)
	RegistryFailures = go_metrics.NewRegisteredMeter("registry/failures", nil)
	CacheHits        = go_metrics.NewRegisteredCounter("registry/cache/hits", nil)
	DecryptAttempts  = go_metrics.NewRegisteredCounter("inco/decrypt/attempts", nil)
	DecryptFailures  = go_metrics.NewRegisteredCounter("inco/decrypt/failures", nil)
	WatcherEvents    = go_metrics.NewRegisteredMeter("watcher/events", nil)
	WatcherHead      = go_metrics.NewRegisteredGauge("watcher/head", nil)
)

// Collector exposes prometheus collectors
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields collects every exported prometheus.Collector field of i
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(prometheus.Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}

// NewRegistry prometheus registry with the process and go collectors, the go-metrics bridge and cs
func NewRegistry(version string, cs ...Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: Namespace,
		}),
		collectors.NewGoCollector(),
		prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "info",
			Help:      "cognumbers information.",
			ConstLabels: prometheus.Labels{
				"version": version,
			},
		}),
		NewBridge(go_metrics.DefaultRegistry),
	)
	for _, c := range cs {
		r.MustRegister(c.Metrics()...)
	}
	return r
}

// StartMetrics 根据配置启动统计输出, ctx 结束时停止 http 服务
func StartMetrics(ctx context.Context, cfg *types.Metrics, reg *prometheus.Registry) {
	if cfg == nil || !cfg.EnableMetrics {
		mlog.Info("Metrics data is not enabled to emit")
		return
	}
	switch cfg.DataEmitMode {
	case "log":
		interval := time.Duration(cfg.LogInterval) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}
		mlog.Info("StartMetrics with log", "interval", interval)
		go go_metrics.Log(go_metrics.DefaultRegistry, interval, printfLogger{})
	case "prometheus":
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		mlog.Info("StartMetrics with prometheus", "addr", cfg.ListenAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				mlog.Error("metrics server", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	default:
		mlog.Error("startMetrics", "The dataEmitMode set is not supported now ", cfg.DataEmitMode)
	}
}

// printfLogger go-metrics Logger backed by log15
type printfLogger struct{}

func (printfLogger) Printf(format string, v ...interface{}) {
	mlog.Info(fmt.Sprintf(format, v...))
}
