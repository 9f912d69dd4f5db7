package storage

import (
	"strings"
	"sync"
	"time"

	"netguard-ids/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Storage is the in-memory activity log. It is created once at daemon
// startup and deliberately outlives monitor start/stop cycles, so alerts
// recorded during a previous protection session are never lost.
type Storage struct {
	mu        sync.RWMutex
	alerts    []model.Alert
	maxAlerts int
	logger    *logrus.Logger

	subs   map[*Subscriber]bool
	subsMu sync.RWMutex
}

// Subscriber receives alerts as they are recorded, for websocket streaming.
type Subscriber struct {
	ID       string
	Channel  chan model.Alert
	Filter   Filter
	LastSeen time.Time
}

// Filter narrows which alerts a subscriber or query sees.
type Filter struct {
	Severity string
	Label    string
}

func NewStorage(maxAlerts int, logger *logrus.Logger) *Storage {
	if maxAlerts <= 0 {
		maxAlerts = 10000
	}
	return &Storage{
		alerts:    make([]model.Alert, 0),
		maxAlerts: maxAlerts,
		logger:    logger,
		subs:      make(map[*Subscriber]bool),
	}
}

// AddAlert records an alert, assigns it an ID, and fans it out to
// subscribers. Oldest alerts are dropped once the cap is reached.
func (s *Storage) AddAlert(alert model.Alert) model.Alert {
	s.mu.Lock()

	alert.ID = uuid.NewString()
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > s.maxAlerts {
		s.alerts = s.alerts[len(s.alerts)-s.maxAlerts:]
	}

	s.mu.Unlock()

	s.notifySubscribers(alert)
	return alert
}

// GetAlerts returns up to limit alerts, latest first, honoring filters.
// search matches against the alert message and source IP.
func (s *Storage) GetAlerts(limit int, severity, label, search string) []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Alert, 0)
	for i := len(s.alerts) - 1; i >= 0 && len(result) < limit; i-- {
		alert := s.alerts[i]

		if severity != "" && alert.Severity != severity {
			continue
		}
		if label != "" && alert.Label != label {
			continue
		}
		if search != "" && !strings.Contains(alert.Message, search) && !strings.Contains(alert.SourceIP, search) {
			continue
		}

		result = append(result, alert)
	}

	return result
}

func (s *Storage) GetAlertByID(id string) *model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			alert := s.alerts[i]
			return &alert
		}
	}
	return nil
}

// Count returns the total number of stored alerts.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// CountBySeverity returns alert counts keyed by severity.
func (s *Storage) CountBySeverity() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for i := range s.alerts {
		counts[s.alerts[i].Severity]++
	}
	return counts
}

func (s *Storage) Subscribe(sub *Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs[sub] = true
}

func (s *Storage) Unsubscribe(sub *Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.Channel)
}

// SubscriberCount returns the number of active subscribers.
func (s *Storage) SubscriberCount() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return len(s.subs)
}

// notifySubscribers takes the write lock: it updates LastSeen on delivery,
// and AddAlert may run from concurrent goroutines.
func (s *Storage) notifySubscribers(alert model.Alert) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for sub := range s.subs {
		if sub.Filter.Severity != "" && alert.Severity != sub.Filter.Severity {
			continue
		}
		if sub.Filter.Label != "" && alert.Label != sub.Filter.Label {
			continue
		}

		select {
		case sub.Channel <- alert:
			sub.LastSeen = time.Now()
		default:
			// Channel full, skip
			if s.logger != nil {
				s.logger.Debugf("Alert subscriber %s is slow, dropping alert", sub.ID)
			}
		}
	}
}
