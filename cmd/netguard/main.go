package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netguard-ids/internal/alert"
	"netguard-ids/internal/api"
	"netguard-ids/internal/capture"
	"netguard-ids/internal/detector"
	"netguard-ids/internal/monitor"
	"netguard-ids/internal/storage"
	"netguard-ids/internal/utils"

	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

func main() {
	var (
		configFile = flag.String("config", "configs/netguard.yaml", "Configuration file path (YAML)")
		port       = flag.String("port", "", "Dashboard port (overrides config)")
	)
	flag.Parse()

	config, err := utils.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load config %s: %v\n", *configFile, err)
		fmt.Println("Using default configuration...")
		config = utils.DefaultConfig()
	} else {
		fmt.Printf("Loaded configuration from %s\n", *configFile)
	}
	if *port != "" {
		config.Monitoring.DashboardPort = *port
	}

	fmt.Printf("NetGuard IDS v%s\n", version)
	fmt.Printf("Mode: %s\n", config.Network.Mode)
	fmt.Printf("Dashboard: http://%s:%s\n", config.Monitoring.DashboardHost, config.Monitoring.DashboardPort)
	fmt.Println("")

	logger := utils.NewLoggerWithFile(config.Logging.Level, config.Logging.File)

	exporter := alert.NewPrometheusExporter(config.Monitoring.MetricsPort, logger)
	metrics := exporter.GetMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := exporter.Start(ctx); err != nil {
			logger.Errorf("Prometheus exporter error: %v", err)
		}
	}()

	store := storage.NewStorage(config.Alerts.MaxStored, logger)

	source, det := buildSource(config, metrics, logger)
	engine := monitor.NewEngine(source, store, metrics, config.Detection.Sensitivity, logger)

	registerAlertNotifiers(engine, config, logger)

	// Reload sensitivity and threshold when the config file changes on disk.
	go func() {
		err := utils.WatchConfig(ctx, *configFile, logger, func(updated *utils.Config) {
			engine.SetSensitivity(updated.Detection.Sensitivity)
			if det != nil {
				det.SetThreshold(updated.Detection.ConfidenceThreshold)
			}
		})
		if err != nil {
			logger.Warnf("Config watcher unavailable: %v", err)
		}
	}()

	// Echo alerts to the console the way the detector log does.
	go func() {
		for {
			select {
			case a := <-engine.AlertChannel():
				fmt.Printf("[%s] %s %s\n", a.Timestamp.Format("2006-01-02 15:04:05"), a.Severity, a.Message)
			case <-ctx.Done():
				return
			}
		}
	}()

	if config.Monitoring.AutoStart {
		engine.Start()
	}

	handlers := api.NewHandlers(engine, store, det, logger)
	addr := fmt.Sprintf("%s:%s", config.Monitoring.DashboardHost, config.Monitoring.DashboardPort)
	srv := api.NewServer(addr, api.NewRouter(handlers))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down...")

		engine.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
		}
	}()

	logger.Infof("Dashboard server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

// buildSource picks the packet source. Live capture needs a trained model
// and a usable interface; any failure falls back to the simulated source so
// the dashboard still works. The returned detector is nil when simulating.
func buildSource(config *utils.Config, metrics *alert.Metrics, logger *logrus.Logger) (monitor.Source, *detector.Detector) {
	if config.Network.Mode != "live" {
		return monitor.NewSimulator(), nil
	}

	det, err := detector.LoadFromFile(config.Detection.ModelPath, config.Detection.ConfidenceThreshold)
	if err != nil {
		logger.Warnf("Failed to load model: %v", err)
		logger.Warn("Falling back to simulated monitoring")
		return monitor.NewSimulator(), nil
	}

	var reader *capture.Reader
	if config.Network.PcapFile != "" {
		reader, err = capture.NewFileReader(config.Network.PcapFile)
	} else {
		iface := config.Network.Interface
		if iface == "auto" {
			iface, err = capture.DefaultInterface()
		}
		if err == nil {
			reader, err = capture.NewLiveReader(iface, config.Network.Promiscuous)
		}
	}
	if err != nil {
		logger.Warnf("Failed to open capture source: %v", err)
		logger.Warn("Falling back to simulated monitoring")
		return monitor.NewSimulator(), nil
	}

	limiter := detector.NewRateLimiter(
		time.Duration(config.Detection.RateLimitWindowSec)*time.Second,
		config.Detection.RateLimitMax,
	)

	logger.Info("Live capture enabled")
	return monitor.NewLiveSource(reader, det, limiter, config.Network.BufferSize, metrics, logger), det
}

func registerAlertNotifiers(engine *monitor.Engine, config *utils.Config, logger *logrus.Logger) {
	engine.RegisterNotifier(alert.NewLogAlertNotifier(logger))

	if config.Alerts.EnableWebhook {
		engine.RegisterNotifier(alert.NewWebhookNotifier(config.Alerts.WebhookURL, true, logger))
	}

	if config.Alerts.EnableTelegram {
		engine.RegisterNotifier(alert.NewTelegramNotifier(
			config.Alerts.TelegramBotToken, config.Alerts.TelegramChatID, true, logger))
	}
}
