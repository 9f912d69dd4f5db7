package alert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"netguard-ids/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleAlert() model.Alert {
	return model.Alert{
		ID:         "test-id",
		Label:      "neptune",
		Severity:   model.SeverityHigh,
		SourceIP:   "10.0.0.1",
		Confidence: 0.95,
		Message:    "neptune attack detected from 10.0.0.1",
		Timestamp:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookDeliversPayload(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(server.URL, true, quietLogger())
	require.NoError(t, wn.SendAlert(sampleAlert()))

	assert.Equal(t, "threat_detected", received.Event)
	assert.Equal(t, "neptune", received.Alert.Label)
	assert.Equal(t, "10.0.0.1", received.Alert.SourceIP)
}

func TestWebhookDisabledIsNoop(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(server.URL, false, quietLogger())
	require.NoError(t, wn.SendAlert(sampleAlert()))
	assert.Zero(t, calls.Load())
}

func TestWebhookRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(server.URL, true, quietLogger())
	require.NoError(t, wn.SendAlert(sampleAlert()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(server.URL, true, quietLogger())
	assert.Error(t, wn.SendAlert(sampleAlert()))
	assert.Equal(t, int32(3), calls.Load())
}
