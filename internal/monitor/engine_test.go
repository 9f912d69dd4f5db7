package monitor

import (
	"context"
	"io"
	"testing"
	"time"

	"netguard-ids/internal/model"
	"netguard-ids/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// idleSource blocks until the engine stops it.
type idleSource struct{}

func (idleSource) Run(ctx context.Context, e *Engine) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestEngine(t *testing.T, source Source, sensitivity int) (*Engine, *storage.Storage) {
	t.Helper()
	logger := newTestLogger()
	store := storage.NewStorage(50000, logger)
	return NewEngine(source, store, nil, sensitivity, logger), store
}

func TestStartStopIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, idleSource{}, 50)

	assert.True(t, e.Start())
	assert.False(t, e.Start(), "second start should be a no-op")
	assert.True(t, e.Running())

	assert.True(t, e.Stop())
	assert.False(t, e.Stop(), "second stop should be a no-op")
	assert.False(t, e.Running())
}

func TestPacketCounterMonotoneWhileRunning(t *testing.T) {
	sim := NewSimulator(WithInterval(time.Hour), WithSimSeed(7))
	e, _ := newTestEngine(t, sim, 50)

	require.True(t, e.Start())
	defer e.Stop()

	prev := int64(0)
	for i := 0; i < 500; i++ {
		sim.Tick(e)
		stats := e.Stats()
		assert.GreaterOrEqual(t, stats.PacketsAnalyzed, prev, "packet counter must never decrease")
		prev = stats.PacketsAnalyzed
	}
	assert.Positive(t, prev)
}

func TestCountersFrozenWhileStopped(t *testing.T) {
	sim := NewSimulator(WithInterval(time.Hour), WithSimSeed(7))
	e, _ := newTestEngine(t, sim, 1)

	require.True(t, e.Start())
	for i := 0; i < 100; i++ {
		sim.Tick(e)
	}
	e.Stop()

	frozen := e.Stats()

	// Ticks arriving after stop must not move anything.
	for i := 0; i < 100; i++ {
		sim.Tick(e)
	}

	stats := e.Stats()
	assert.Equal(t, frozen.PacketsAnalyzed, stats.PacketsAnalyzed)
	assert.Equal(t, frozen.ThreatsDetected, stats.ThreatsDetected)
	assert.False(t, stats.IsMonitoring)
	assert.Zero(t, stats.Uptime, "uptime reports 0 while stopped")
}

func TestSensitivityBoundsAlertRate(t *testing.T) {
	const ticks = 20000

	alertsAt := func(sensitivity int, seed int64) int64 {
		sim := NewSimulator(WithInterval(time.Hour), WithSimSeed(seed))
		e, _ := newTestEngine(t, sim, sensitivity)
		require.True(t, e.Start())
		defer e.Stop()
		for i := 0; i < ticks; i++ {
			sim.Tick(e)
		}
		return e.Stats().ThreatsDetected
	}

	low := alertsAt(1, 1)    // P(threat) = 0.099 per tick
	mid := alertsAt(50, 1)   // P(threat) = 0.050 per tick
	high := alertsAt(100, 1) // P(threat) = 0 per tick

	assert.Zero(t, high, "sensitivity=100 must emit no simulated alerts")
	assert.Greater(t, low, mid)
	assert.Greater(t, mid, high)

	// The observed rate should sit near the configured probability.
	assert.InDelta(t, 0.099*ticks, float64(low), 0.015*ticks)
	assert.InDelta(t, 0.050*ticks, float64(mid), 0.015*ticks)
}

func TestRestartPreservesActivityLog(t *testing.T) {
	sim := NewSimulator(WithInterval(time.Hour), WithSimSeed(3))
	e, store := newTestEngine(t, sim, 1)

	require.True(t, e.Start())
	for i := 0; i < 1000; i++ {
		sim.Tick(e)
	}
	e.Stop()

	recorded := store.Count()
	require.Positive(t, recorded, "expected some simulated alerts")

	// Restarting resets the session counters but must keep the log.
	require.True(t, e.Start())
	defer e.Stop()

	stats := e.Stats()
	assert.Zero(t, stats.PacketsAnalyzed)
	assert.Zero(t, stats.ThreatsDetected)
	assert.Equal(t, recorded, store.Count(), "restart must not lose recorded alerts")
}

func TestStatsAlwaysWellFormed(t *testing.T) {
	sim := NewSimulator(WithInterval(time.Hour), WithSimSeed(11))
	e, _ := newTestEngine(t, sim, 50)

	check := func(stats model.Stats) {
		assert.GreaterOrEqual(t, stats.PacketsAnalyzed, int64(0))
		assert.GreaterOrEqual(t, stats.ThreatsDetected, int64(0))
		assert.GreaterOrEqual(t, stats.Uptime, int64(0))
		assert.GreaterOrEqual(t, stats.Sensitivity, 1)
		assert.LessOrEqual(t, stats.Sensitivity, 100)
	}

	check(e.Stats())
	require.True(t, e.Start())
	for i := 0; i < 50; i++ {
		sim.Tick(e)
		check(e.Stats())
	}
	e.Stop()
	check(e.Stats())
}

func TestSetSensitivityClamps(t *testing.T) {
	e, _ := newTestEngine(t, idleSource{}, 50)

	assert.Equal(t, 1, e.SetSensitivity(-10))
	assert.Equal(t, 100, e.SetSensitivity(400))
	assert.Equal(t, 42, e.SetSensitivity(42))
	assert.Equal(t, 42, e.Sensitivity())
}

func TestEmitThreatFillsDefaults(t *testing.T) {
	e, store := newTestEngine(t, idleSource{}, 50)
	require.True(t, e.Start())
	defer e.Stop()

	e.EmitThreat(model.Alert{Label: "neptune", SourceIP: "10.0.0.1", Confidence: 0.9})

	alerts := store.GetAlerts(10, "", "", "")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.NotEmpty(t, alerts[0].ID)
	assert.False(t, alerts[0].Timestamp.IsZero())

	select {
	case a := <-e.AlertChannel():
		assert.Equal(t, "neptune", a.Label)
	default:
		t.Fatal("alert was not published to the stream channel")
	}
}
