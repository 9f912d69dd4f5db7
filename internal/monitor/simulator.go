package monitor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"netguard-ids/internal/model"
)

// simulatedLabels are the KDD attack names the demo loop draws from.
var simulatedLabels = []string{"neptune", "smurf", "back", "portsweep", "ipsweep", "teardrop"}

// Simulator fabricates traffic when no capture interface is available: each
// tick analyzes a random batch of 50-200 packets and emits a threat with
// probability (100 - sensitivity)/1000.
type Simulator struct {
	interval time.Duration
	rng      *rand.Rand
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithInterval overrides the 1s tick, mainly for tests.
func WithInterval(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.interval = d
	}
}

// WithSimSeed makes the simulation deterministic.
func WithSimSeed(seed int64) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// NewSimulator creates a simulated packet source.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		interval: time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run implements Source.
func (s *Simulator) Run(ctx context.Context, e *Engine) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(e)
		}
	}
}

// Tick performs one simulation step. Exposed so tests can drive the
// simulation without waiting on the ticker.
func (s *Simulator) Tick(e *Engine) {
	e.RecordPackets(50 + s.rng.Intn(151))

	threatProbability := float64(100-e.Sensitivity()) / 1000.0
	if s.rng.Float64() < threatProbability {
		e.EmitThreat(s.fabricateAlert())
	}
}

func (s *Simulator) fabricateAlert() model.Alert {
	label := simulatedLabels[s.rng.Intn(len(simulatedLabels))]
	sourceIP := fmt.Sprintf("%d.%d.%d.%d",
		s.rng.Intn(256), s.rng.Intn(256), s.rng.Intn(256), s.rng.Intn(256))
	confidence := 0.80 + s.rng.Float64()*0.19

	return model.Alert{
		Label:      label,
		Severity:   model.SeverityForLabel(label),
		SourceIP:   sourceIP,
		Confidence: confidence,
		Message:    fmt.Sprintf("%s attack detected from %s", label, sourceIP),
		Timestamp:  time.Now(),
	}
}
