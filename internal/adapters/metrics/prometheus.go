// Package metrics exposes send outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// Prometheus implements ports.SendObserver.
type Prometheus struct {
	SendsTotal           *prometheus.CounterVec
	FallbacksTotal       prometheus.Counter
	SendDuration         *prometheus.HistogramVec
	BytesTotal           *prometheus.CounterVec
	OutstandingSyncBytes prometheus.Gauge
}

// NewPrometheus creates the metrics and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		SendsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telsend_sends_total",
				Help: "Logical sends by transport and outcome",
			},
			[]string{"transport", "outcome"},
		),
		FallbacksTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "telsend_fallbacks_total",
				Help: "Sends completed through the beacon fallback",
			},
		),
		SendDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telsend_send_duration_seconds",
				Help:    "Time from send to completion",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"transport"},
		),
		BytesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telsend_bytes_total",
				Help: "Payload bytes handed to the network",
			},
			[]string{"transport"},
		),
		OutstandingSyncBytes: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "telsend_outstanding_sync_bytes",
				Help: "Keepalive body bytes currently in flight",
			},
		),
	}
}

// OnSendComplete records one logical send.
func (p *Prometheus) OnSendComplete(r ports.SendResult) {
	transport := r.Transport.String()
	p.SendsTotal.WithLabelValues(transport, outcome(r)).Inc()
	p.SendDuration.WithLabelValues(transport).Observe(r.Duration.Seconds())
	p.BytesTotal.WithLabelValues(transport).Add(float64(r.Bytes))
	if r.Fallback {
		p.FallbacksTotal.Inc()
	}
}

// OnOutstandingSyncBytes updates the keepalive gauge.
func (p *Prometheus) OnOutstandingSyncBytes(n int64) {
	p.OutstandingSyncBytes.Set(float64(n))
}

func outcome(r ports.SendResult) string {
	switch {
	case r.Status == domain.StatusTimeout && r.Err != nil:
		return "timeout"
	case r.Err != nil:
		return "failure"
	case domain.Successful(r.Status):
		return "success"
	default:
		return "rejected"
	}
}
