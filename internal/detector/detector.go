// Package detector wraps the trained classifier for the real-time
// inference path.
package detector

import (
	"fmt"
	"os"
	"sync"

	"netguard-ids/internal/detector/forest"
	"netguard-ids/internal/model"
)

// NormalLabel is the class name for benign traffic; everything else is
// treated as an attack.
const NormalLabel = "normal"

// Detector classifies connection feature vectors with a trained random
// forest and applies the configured confidence threshold.
type Detector struct {
	mu        sync.RWMutex
	forest    *forest.RandomForest
	threshold float64
}

// New wraps an already-trained forest.
func New(f *forest.RandomForest, threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	return &Detector{forest: f, threshold: threshold}
}

// LoadFromFile reads a gob-serialized model from disk.
func LoadFromFile(path string, threshold float64) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %v", path, err)
	}

	f := forest.New()
	if err := f.Load(data); err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %v", path, err)
	}

	return New(f, threshold), nil
}

// PredictOne classifies a single connection record.
func (d *Detector) PredictOne(sample []float64) (model.Prediction, error) {
	label, confidence, err := d.forest.PredictOne(sample)
	if err != nil {
		return model.Prediction{}, err
	}

	return model.Prediction{
		Label:      label,
		IsAttack:   label != NormalLabel,
		Confidence: confidence,
	}, nil
}

// ShouldAlert reports whether a prediction clears the alert threshold.
func (d *Detector) ShouldAlert(p model.Prediction) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return p.IsAttack && p.Confidence > d.threshold
}

// Threshold returns the current confidence threshold.
func (d *Detector) Threshold() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetThreshold updates the confidence threshold; values outside (0,1]
// are ignored.
func (d *Detector) SetThreshold(t float64) {
	if t <= 0 || t > 1 {
		return
	}
	d.mu.Lock()
	d.threshold = t
	d.mu.Unlock()
}
