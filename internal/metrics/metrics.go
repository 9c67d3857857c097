// Package metrics exposes Prometheus instrumentation for the daemon.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SequencesStarted   prometheus.Counter
	SequencesCompleted prometheus.Counter
	Syncs              *prometheus.CounterVec
	ChannelDuty        *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SequencesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("sunrised", "sequence", "started_total"),
			Help: "Number of sunrise sequences started",
		}),
		SequencesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("sunrised", "sequence", "completed_total"),
			Help: "Number of sunrise sequences run to completion",
		}),
		Syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("sunrised", "sync", "total"),
			Help: "Sync sub-operations by resource and result",
		}, []string{"resource", "result"}),
		ChannelDuty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName("sunrised", "pwm", "duty_cycle"),
			Help: "Last duty cycle written per channel",
		}, []string{"channel"}),
	}

	m.registry.MustRegister(m.SequencesStarted, m.SequencesCompleted, m.Syncs, m.ChannelDuty)
	return m
}

// ObserveSync records one sync sub-operation result.
func (m *Metrics) ObserveSync(resource string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Syncs.WithLabelValues(resource, result).Inc()
}

// ObserveDuty records the last written duty for a channel.
func (m *Metrics) ObserveDuty(channel int, value uint32) {
	m.ChannelDuty.WithLabelValues(strconv.Itoa(channel)).Set(float64(value))
}

// Handler returns the /metrics HTTP handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
