package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"netguard-ids/internal/model"

	"github.com/sirupsen/logrus"
)

// WebhookNotifier POSTs alerts as JSON to a configured endpoint.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *http.Client
	logger  *logrus.Logger
}

type webhookPayload struct {
	Event string      `json:"event"`
	Alert model.Alert `json:"alert"`
}

func NewWebhookNotifier(url string, enabled bool, logger *logrus.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		enabled: enabled,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SendAlert implements Notifier. Retries up to 3 times with linear backoff.
func (wn *WebhookNotifier) SendAlert(alert model.Alert) error {
	if !wn.enabled {
		wn.logger.Debug("Webhook notifier is disabled, skipping alert")
		return nil
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err := wn.post(alert)
		if err == nil {
			return nil
		}

		wn.logger.Warnf("Failed to deliver webhook alert (attempt %d/%d): %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}

	return fmt.Errorf("failed to deliver webhook alert after %d attempts", maxRetries)
}

func (wn *WebhookNotifier) post(alert model.Alert) error {
	body, err := json.Marshal(webhookPayload{Event: "threat_detected", Alert: alert})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %v", err)
	}

	resp, err := wn.client.Post(wn.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
