package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"netguard-ids/internal/model"

	"github.com/sirupsen/logrus"
)

// TelegramNotifier sends alerts to a Telegram chat via the bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	apiBase  string
	client   *http.Client
	logger   *logrus.Logger
}

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func NewTelegramNotifier(botToken, chatID string, enabled bool, logger *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		enabled:  enabled,
		apiBase:  "https://api.telegram.org",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SendAlert implements Notifier. Retries up to 3 times with linear backoff.
func (tn *TelegramNotifier) SendAlert(alert model.Alert) error {
	if !tn.enabled {
		tn.logger.Debug("Telegram notifier is disabled, skipping alert")
		return nil
	}

	message := formatTelegramMessage(alert)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err := tn.sendMessage(message)
		if err == nil {
			return nil
		}

		tn.logger.Warnf("Failed to send Telegram alert (attempt %d/%d): %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}

	return fmt.Errorf("failed to send Telegram alert after %d attempts", maxRetries)
}

func formatTelegramMessage(alert model.Alert) string {
	return fmt.Sprintf("THREAT DETECTED\n\n"+
		"attack: %s\n"+
		"severity: %s\n"+
		"source: %s\n"+
		"confidence: %.2f\n"+
		"time: %s\n"+
		"description: %s",
		alert.Label,
		alert.Severity,
		alert.SourceIP,
		alert.Confidence,
		alert.Timestamp.Format("2006-01-02 15:04:05"),
		alert.Message)
}

func (tn *TelegramNotifier) sendMessage(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", tn.apiBase, tn.botToken)

	jsonData, err := json.Marshal(telegramMessage{ChatID: tn.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var telegramResp telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("telegram API error: %s", telegramResp.Description)
	}

	return nil
}

// IsEnabled reports whether the notifier will deliver alerts.
func (tn *TelegramNotifier) IsEnabled() bool {
	return tn.enabled
}
