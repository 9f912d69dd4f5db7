package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Network    NetworkConfig    `yaml:"network"`
	Detection  DetectionConfig  `yaml:"detection"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type NetworkConfig struct {
	// Mode selects the packet source: "simulate" or "live".
	Mode        string `yaml:"mode"`
	Interface   string `yaml:"interface"`
	Promiscuous bool   `yaml:"promiscuous_mode"`
	BufferSize  int    `yaml:"buffer_size"`
	PcapFile    string `yaml:"pcap_file"`
}

type DetectionConfig struct {
	ModelPath           string  `yaml:"model_path"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	Sensitivity         int     `yaml:"sensitivity"`
	RateLimitWindowSec  int     `yaml:"rate_limit_window"`
	RateLimitMax        int     `yaml:"rate_limit_max"`
}

type AlertsConfig struct {
	EnableWebhook    bool   `yaml:"enable_webhook"`
	WebhookURL       string `yaml:"webhook_url"`
	EnableTelegram   bool   `yaml:"enable_telegram"`
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
	MaxStored        int    `yaml:"max_stored"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MonitoringConfig struct {
	DashboardHost string `yaml:"dashboard_host"`
	DashboardPort string `yaml:"dashboard_port"`
	MetricsPort   string `yaml:"metrics_port"`
	AutoStart     bool   `yaml:"auto_start"`
}

func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = "configs/netguard.yaml"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %v", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return &config, nil
}

// Validate fills in defaults for anything the file left out and rejects
// values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Network.Mode == "" {
		c.Network.Mode = "simulate"
	}
	if c.Network.Mode != "simulate" && c.Network.Mode != "live" {
		return fmt.Errorf("network.mode must be \"simulate\" or \"live\", got %q", c.Network.Mode)
	}
	if c.Network.Interface == "" {
		c.Network.Interface = "auto"
	}
	if c.Network.BufferSize <= 0 {
		c.Network.BufferSize = 1000
	}

	if c.Detection.ModelPath == "" {
		c.Detection.ModelPath = "models/random_forest_tuned.gob"
	}
	if c.Detection.ConfidenceThreshold <= 0 || c.Detection.ConfidenceThreshold > 1 {
		c.Detection.ConfidenceThreshold = 0.8
	}
	if c.Detection.Sensitivity < 1 || c.Detection.Sensitivity > 100 {
		c.Detection.Sensitivity = 50
	}
	if c.Detection.RateLimitWindowSec <= 0 {
		c.Detection.RateLimitWindowSec = 60
	}
	if c.Detection.RateLimitMax <= 0 {
		c.Detection.RateLimitMax = 5
	}

	if c.Alerts.MaxStored <= 0 {
		c.Alerts.MaxStored = 10000
	}
	if c.Alerts.EnableWebhook && c.Alerts.WebhookURL == "" {
		return fmt.Errorf("alerts.webhook_url cannot be empty when alerts.enable_webhook is true")
	}
	if c.Alerts.EnableTelegram && (c.Alerts.TelegramBotToken == "" || c.Alerts.TelegramChatID == "") {
		return fmt.Errorf("alerts.telegram_bot_token and alerts.telegram_chat_id cannot be empty when alerts.enable_telegram is true")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}

	if c.Monitoring.DashboardHost == "" {
		c.Monitoring.DashboardHost = "127.0.0.1"
	}
	if c.Monitoring.DashboardPort == "" {
		c.Monitoring.DashboardPort = "8080"
	}
	if c.Monitoring.MetricsPort == "" {
		c.Monitoring.MetricsPort = "9090"
	}

	return nil
}

// DefaultConfig returns the built-in configuration used when no file is
// present.
func DefaultConfig() *Config {
	config := &Config{}
	_ = config.Validate()
	return config
}
