package alert

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments exported by the daemon.
type Metrics struct {
	PacketsAnalyzed   prometheus.Counter
	ThreatsDetected   *prometheus.CounterVec
	AlertsDropped     prometheus.Counter
	AlertsRateLimited *prometheus.CounterVec
	MonitorRunning    prometheus.Gauge
	Sensitivity       prometheus.Gauge
	ProcessingTime    prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		PacketsAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "netguard_packets_analyzed_total",
				Help: "Total number of packets analyzed",
			},
		),

		ThreatsDetected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netguard_threats_detected_total",
				Help: "Total number of threats detected by label and severity",
			},
			[]string{"label", "severity"},
		),

		AlertsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "netguard_alerts_dropped_total",
				Help: "Total number of alerts dropped because the alert channel was full",
			},
		),

		AlertsRateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netguard_alerts_rate_limited_total",
				Help: "Total number of alerts suppressed by the per-source rate limiter",
			},
			[]string{"source_ip"},
		),

		MonitorRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "netguard_monitor_running",
				Help: "1 while protection is enabled, 0 otherwise",
			},
		),

		Sensitivity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "netguard_detection_sensitivity",
				Help: "Current detection sensitivity setting (1-100)",
			},
		),

		ProcessingTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netguard_packet_processing_seconds",
				Help:    "Time spent classifying a single packet",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
	}
}

// Register registers all instruments on the given registry.
func (m *Metrics) Register(registry prometheus.Registerer) {
	registry.MustRegister(
		m.PacketsAnalyzed,
		m.ThreatsDetected,
		m.AlertsDropped,
		m.AlertsRateLimited,
		m.MonitorRunning,
		m.Sensitivity,
		m.ProcessingTime,
	)
}
