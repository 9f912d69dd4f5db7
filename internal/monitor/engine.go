// Package monitor runs the protection loop: a packet source feeds the
// engine, which keeps the dashboard counters and fans detected threats out
// to the activity log and alert notifiers.
package monitor

import (
	"context"
	"sync"
	"time"

	"netguard-ids/internal/alert"
	"netguard-ids/internal/model"
	"netguard-ids/internal/storage"

	"github.com/sirupsen/logrus"
)

// Source produces packets and threats for the engine while protection is
// enabled. Run blocks until ctx is done.
type Source interface {
	Run(ctx context.Context, e *Engine) error
}

// Engine owns the monitoring lifecycle and counters. The alert store is
// injected and outlives Start/Stop cycles, so stopping protection never
// discards previously recorded alerts.
type Engine struct {
	mu          sync.RWMutex
	running     bool
	packets     int64
	threats     int64
	startTime   time.Time
	sensitivity int
	cancel      context.CancelFunc
	done        chan struct{}

	source    Source
	store     *storage.Storage
	notifiers []alert.Notifier
	metrics   *alert.Metrics
	logger    *logrus.Logger

	alertChannel chan model.Alert
}

// NewEngine creates an engine with the given source and sensitivity.
func NewEngine(source Source, store *storage.Storage, metrics *alert.Metrics, sensitivity int, logger *logrus.Logger) *Engine {
	if sensitivity < 1 || sensitivity > 100 {
		sensitivity = 50
	}
	e := &Engine{
		source:       source,
		store:        store,
		metrics:      metrics,
		sensitivity:  sensitivity,
		logger:       logger,
		alertChannel: make(chan model.Alert, 100),
	}
	if metrics != nil {
		metrics.Sensitivity.Set(float64(sensitivity))
	}
	return e
}

// RegisterNotifier adds an alert notifier.
func (e *Engine) RegisterNotifier(n alert.Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, n)
}

// Start enables protection. Counters reset on every start, matching the
// dashboard's "fresh session" semantics; the activity log is untouched.
// Idempotent: starting a running engine is a no-op.
func (e *Engine) Start() bool {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return false
	}

	e.running = true
	e.packets = 0
	e.threats = 0
	e.startTime = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	source := e.source
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.MonitorRunning.Set(1)
	}
	e.logger.Info("Protection enabled, monitoring started")

	go func() {
		defer close(e.done)
		if err := source.Run(ctx, e); err != nil && err != context.Canceled {
			e.logger.Errorf("Monitor source stopped with error: %v", err)
		}
	}()

	return true
}

// Stop disables protection and freezes the counters. Idempotent.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}
	e.running = false
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done

	if e.metrics != nil {
		e.metrics.MonitorRunning.Set(0)
	}
	e.logger.Info("Protection disabled, monitoring stopped")
	return true
}

// Running reports whether protection is enabled.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// Stats returns the dashboard snapshot. Uptime is 0 while stopped.
func (e *Engine) Stats() model.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var uptime int64
	if e.running && !e.startTime.IsZero() {
		uptime = int64(time.Since(e.startTime).Seconds())
	}

	return model.Stats{
		IsMonitoring:    e.running,
		PacketsAnalyzed: e.packets,
		ThreatsDetected: e.threats,
		Uptime:          uptime,
		Sensitivity:     e.sensitivity,
	}
}

// Sensitivity returns the current detection sensitivity.
func (e *Engine) Sensitivity() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sensitivity
}

// SetSensitivity updates the sensitivity, clamped to [1,100]. Takes effect
// on the next tick.
func (e *Engine) SetSensitivity(value int) int {
	if value < 1 {
		value = 1
	}
	if value > 100 {
		value = 100
	}

	e.mu.Lock()
	e.sensitivity = value
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.Sensitivity.Set(float64(value))
	}
	e.logger.Infof("Detection sensitivity updated to %d", value)
	return value
}

// RecordPackets adds analyzed packets to the session counter. Ignored while
// stopped so a lagging source cannot move frozen counters.
func (e *Engine) RecordPackets(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.packets += int64(n)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.PacketsAnalyzed.Add(float64(n))
	}
}

// EmitThreat counts a detected threat and publishes the alert to the
// store, notifiers, and the streaming channel.
func (e *Engine) EmitThreat(a model.Alert) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.threats++
	notifiers := make([]alert.Notifier, len(e.notifiers))
	copy(notifiers, e.notifiers)
	e.mu.Unlock()

	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	if a.Severity == "" {
		a.Severity = model.SeverityForLabel(a.Label)
	}

	stored := e.store.AddAlert(a)

	if e.metrics != nil {
		e.metrics.ThreatsDetected.WithLabelValues(stored.Label, stored.Severity).Inc()
	}

	select {
	case e.alertChannel <- stored:
	default:
		e.logger.Error("Alert channel is full, dropping alert")
		if e.metrics != nil {
			e.metrics.AlertsDropped.Inc()
		}
	}

	for _, n := range notifiers {
		if err := n.SendAlert(stored); err != nil {
			e.logger.Errorf("Failed to send alert: %v", err)
		}
	}
}

// AlertChannel exposes the stream of emitted alerts.
func (e *Engine) AlertChannel() <-chan model.Alert {
	return e.alertChannel
}
