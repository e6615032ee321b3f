// Package metrics exposes load-run progress in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voiceq/internal/runner"
)

// Collector implements runner.Observer on its own registry.
type Collector struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	latency  prometheus.Histogram
	active   prometheus.Gauge
	peak     prometheus.Gauge
}

var _ runner.Observer = (*Collector)(nil)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "voiceq",
				Name:      "commands_total",
				Help:      "Commands resolved, by outcome.",
			},
			[]string{"outcome"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "voiceq",
				Name:      "command_latency_seconds",
				Help:      "Time from send to terminal result.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 13),
			},
		),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voiceq",
			Name:      "active_clients",
			Help:      "Client sessions currently connected.",
		}),
		peak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voiceq",
			Name:      "peak_clients",
			Help:      "Highest number of simultaneously connected sessions in the current run.",
		}),
	}
	c.registry.MustRegister(c.commands, c.latency, c.active, c.peak)
	return c
}

func (c *Collector) ObserveResult(res runner.CommandResult) {
	c.commands.WithLabelValues(string(res.Outcome)).Inc()
	c.latency.Observe(res.Latency.Seconds())
}

func (c *Collector) ObserveClients(active, peak int64) {
	c.active.Set(float64(active))
	c.peak.Set(float64(peak))
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
