package alert

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// PrometheusExporter exposes the daemon's metrics over HTTP.
type PrometheusExporter struct {
	server  *http.Server
	metrics *Metrics
	logger  *logrus.Logger
	port    string
}

// CreateCustomRegistry builds a registry with the standard runtime collectors.
func CreateCustomRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return registry
}

// NewPrometheusExporter creates an exporter serving /metrics and /health on
// the given port, with all daemon instruments registered on a custom registry.
func NewPrometheusExporter(port string, logger *logrus.Logger) *PrometheusExporter {
	metrics := NewMetrics()
	registry := CreateCustomRegistry()
	metrics.Register(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`
			<h1>NetGuard Prometheus Exporter</h1>
			<p><a href="/metrics">Metrics</a></p>
			<p><a href="/health">Health Check</a></p>
		`))
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return &PrometheusExporter{
		server:  server,
		metrics: metrics,
		logger:  logger,
		port:    port,
	}
}

// Start runs the exporter server until ctx is done, then shuts it down.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	e.logger.Infof("Starting Prometheus exporter on port %s", e.port)
	e.logger.Infof("Metrics available at: http://localhost:%s/metrics", e.port)

	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Errorf("Failed to start Prometheus exporter: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.logger.Info("Shutting down Prometheus exporter...")
	return e.server.Shutdown(shutdownCtx)
}

// GetMetrics returns the exporter's metrics instance.
func (e *PrometheusExporter) GetMetrics() *Metrics {
	return e.metrics
}
