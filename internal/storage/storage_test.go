package storage

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"netguard-ids/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(maxAlerts int) *Storage {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStorage(maxAlerts, logger)
}

func TestAddAlertAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStorage(10)

	stored := store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh})

	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())
	assert.Equal(t, 1, store.Count())
}

func TestGetAlertsLatestFirstWithLimit(t *testing.T) {
	store := newTestStorage(100)
	for i := 0; i < 10; i++ {
		store.AddAlert(model.Alert{
			Label:    "smurf",
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("alert %d", i),
		})
	}

	alerts := store.GetAlerts(3, "", "", "")
	require.Len(t, alerts, 3)
	assert.Equal(t, "alert 9", alerts[0].Message)
	assert.Equal(t, "alert 8", alerts[1].Message)
	assert.Equal(t, "alert 7", alerts[2].Message)
}

func TestGetAlertsFilters(t *testing.T) {
	store := newTestStorage(100)
	store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh, SourceIP: "10.0.0.1", Message: "neptune attack"})
	store.AddAlert(model.Alert{Label: "portsweep", Severity: model.SeverityMedium, SourceIP: "10.0.0.2", Message: "portsweep probe"})
	store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh, SourceIP: "192.168.1.5", Message: "neptune attack"})

	tests := []struct {
		name     string
		severity string
		label    string
		search   string
		want     int
	}{
		{name: "no filter", want: 3},
		{name: "by severity", severity: model.SeverityMedium, want: 1},
		{name: "by label", label: "neptune", want: 2},
		{name: "by source ip search", search: "192.168", want: 1},
		{name: "by message search", search: "probe", want: 1},
		{name: "no match", label: "teardrop", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := store.GetAlerts(50, tt.severity, tt.label, tt.search)
			assert.Len(t, alerts, tt.want)
		})
	}
}

func TestStorageCapDropsOldest(t *testing.T) {
	store := newTestStorage(5)
	for i := 0; i < 8; i++ {
		store.AddAlert(model.Alert{Label: "back", Severity: model.SeverityHigh, Message: fmt.Sprintf("alert %d", i)})
	}

	assert.Equal(t, 5, store.Count())

	alerts := store.GetAlerts(10, "", "", "")
	require.Len(t, alerts, 5)
	assert.Equal(t, "alert 7", alerts[0].Message)
	assert.Equal(t, "alert 3", alerts[len(alerts)-1].Message)
}

func TestGetAlertByID(t *testing.T) {
	store := newTestStorage(10)
	stored := store.AddAlert(model.Alert{Label: "ipsweep", Severity: model.SeverityMedium})

	found := store.GetAlertByID(stored.ID)
	require.NotNil(t, found)
	assert.Equal(t, stored.ID, found.ID)

	assert.Nil(t, store.GetAlertByID("no-such-id"))
}

func TestCountBySeverity(t *testing.T) {
	store := newTestStorage(10)
	store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh})
	store.AddAlert(model.Alert{Label: "smurf", Severity: model.SeverityHigh})
	store.AddAlert(model.Alert{Label: "portsweep", Severity: model.SeverityMedium})

	counts := store.CountBySeverity()
	assert.Equal(t, 2, counts[model.SeverityHigh])
	assert.Equal(t, 1, counts[model.SeverityMedium])
}

func TestSubscriberReceivesMatchingAlerts(t *testing.T) {
	store := newTestStorage(10)

	sub := &Subscriber{
		ID:      "test-sub",
		Channel: make(chan model.Alert, 10),
		Filter:  Filter{Severity: model.SeverityHigh},
	}
	store.Subscribe(sub)

	store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh})
	store.AddAlert(model.Alert{Label: "portsweep", Severity: model.SeverityMedium})

	require.Len(t, sub.Channel, 1)
	got := <-sub.Channel
	assert.Equal(t, "neptune", got.Label)

	store.Unsubscribe(sub)
	_, open := <-sub.Channel
	assert.False(t, open, "channel must be closed after unsubscribe")

	// Second unsubscribe must not panic on a closed channel.
	store.Unsubscribe(sub)
}

func TestConcurrentAddAlertFanOut(t *testing.T) {
	store := newTestStorage(1000)

	sub := &Subscriber{
		ID:      "concurrent-sub",
		Channel: make(chan model.Alert, 200),
	}
	store.Subscribe(sub)
	defer store.Unsubscribe(sub)
	assert.Equal(t, 1, store.SubscriberCount())

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				store.AddAlert(model.Alert{Label: "neptune", Severity: model.SeverityHigh})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, store.Count())
	assert.Len(t, sub.Channel, 100)
	assert.False(t, sub.LastSeen.IsZero())
}

func TestSlowSubscriberDoesNotBlockAdd(t *testing.T) {
	store := newTestStorage(10)

	sub := &Subscriber{
		ID:      "slow-sub",
		Channel: make(chan model.Alert, 1),
	}
	store.Subscribe(sub)
	defer store.Unsubscribe(sub)

	for i := 0; i < 5; i++ {
		store.AddAlert(model.Alert{Label: "smurf", Severity: model.SeverityHigh})
	}

	assert.Equal(t, 5, store.Count())
	assert.Len(t, sub.Channel, 1)
}
