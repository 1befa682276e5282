// internal/metrics/prometheus_recorder.go
package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "overlay"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	reg          *prom.Registry
	ticks        prom.Counter
	redraws      *prom.CounterVec
	sampleErrors *prom.CounterVec
	acquireWait  prom.Histogram
	submitErrors prom.Counter
}

// NewPrometheusRecorder constructs and registers the loop metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.ticks = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Scheduler ticks processed",
		})
		pr.redraws = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "redraws_total",
			Help:      "Composited frames by trigger",
		}, []string{"reason"})
		pr.sampleErrors = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sample_errors_total",
			Help:      "Ticks on which a sampler reported a read failure",
		}, []string{"source"})
		pr.acquireWait = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "acquire_wait_seconds",
			Help:      "Time spent blocked waiting for a free presentation buffer",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		})
		pr.submitErrors = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "submit_errors_total",
			Help:      "Frames the presentation sink refused",
		})
		reg.MustRegister(pr.ticks, pr.redraws, pr.sampleErrors, pr.acquireWait, pr.submitErrors)
	})
	return pr
}

// WatchPool exports the number of free presentation buffers.
func (p *PrometheusRecorder) WatchPool(free func() int) {
	if p == nil || p.reg == nil || free == nil {
		return
	}
	p.reg.MustRegister(prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_free_buffers",
		Help:      "Presentation buffers currently in the pool",
	}, func() float64 { return float64(free()) }))
}

// Handler serves the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return HTTPHandler(p.reg)
}

func (p *PrometheusRecorder) IncTick() {
	if p == nil || p.ticks == nil {
		return
	}
	p.ticks.Inc()
}

func (p *PrometheusRecorder) IncRedraw(reason RedrawReason) {
	if p == nil || p.redraws == nil {
		return
	}
	p.redraws.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusRecorder) IncSampleError(source string) {
	if p == nil || p.sampleErrors == nil {
		return
	}
	p.sampleErrors.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) ObserveAcquireWait(d time.Duration) {
	if p == nil || p.acquireWait == nil {
		return
	}
	p.acquireWait.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSubmitError() {
	if p == nil || p.submitErrors == nil {
		return
	}
	p.submitErrors.Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
