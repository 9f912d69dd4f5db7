// Package dataset loads and prepares KDD-style connection records for
// training and evaluation.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"netguard-ids/internal/features"
)

// Dataset pairs feature vectors with their class labels.
type Dataset struct {
	X [][]float64
	Y []string
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Columns holding categorical values in the KDD layout.
const (
	colProtocol = 1
	colService  = 2
	colFlag     = 3
)

// Load reads a KDD CSV file. Rows must have the 41 feature columns
// followed by the label; a trailing difficulty column is tolerated and
// ignored. A header row is detected and skipped.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %v", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	start := 0
	if isHeader(records[0]) {
		start = 1
	}

	ds := &Dataset{}
	for i := start; i < len(records); i++ {
		row := records[i]
		if len(row) < features.NumFeatures+1 {
			return nil, fmt.Errorf("row %d has %d columns, want at least %d", i+1, len(row), features.NumFeatures+1)
		}

		vector := make([]float64, features.NumFeatures)
		for j := 0; j < features.NumFeatures; j++ {
			// Categorical columns may already be numeric when reading a
			// preprocessed file.
			if v, err := strconv.ParseFloat(row[j], 64); err == nil {
				vector[j] = v
				continue
			}
			switch j {
			case colProtocol:
				vector[j] = features.EncodeProtocol(row[j])
			case colService:
				vector[j] = features.EncodeService(row[j])
			case colFlag:
				vector[j] = features.EncodeFlag(row[j])
			default:
				return nil, fmt.Errorf("row %d column %d: %q is not numeric", i+1, j+1, row[j])
			}
		}

		ds.X = append(ds.X, vector)
		ds.Y = append(ds.Y, row[features.NumFeatures])
	}

	return ds, nil
}

// isHeader reports whether the first row looks like column names rather
// than data: the duration column of a data row always parses as a number.
func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(row[0], 64)
	return err != nil
}

// Split partitions the dataset into train and validation subsets with a
// deterministic shuffle.
func Split(ds *Dataset, valFraction float64, seed int64) (*Dataset, *Dataset) {
	if valFraction <= 0 || valFraction >= 1 {
		valFraction = 0.2
	}

	n := ds.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nVal := int(math.Round(float64(n) * valFraction))

	val := &Dataset{}
	train := &Dataset{}
	for i, idx := range perm {
		if i < nVal {
			val.X = append(val.X, ds.X[idx])
			val.Y = append(val.Y, ds.Y[idx])
		} else {
			train.X = append(train.X, ds.X[idx])
			train.Y = append(train.Y, ds.Y[idx])
		}
	}
	return train, val
}

// Oversample balances classes by sampling minority classes with
// replacement up to the majority class count. maxSamples caps the total
// size after balancing (0 means no cap).
func Oversample(ds *Dataset, maxSamples int, seed int64) *Dataset {
	byClass := make(map[string][]int)
	for i, label := range ds.Y {
		byClass[label] = append(byClass[label], i)
	}

	majority := 0
	for _, indices := range byClass {
		if len(indices) > majority {
			majority = len(indices)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	out := &Dataset{}
	for _, label := range classOrder(ds.Y) {
		indices := byClass[label]
		for i := 0; i < majority; i++ {
			var idx int
			if i < len(indices) {
				idx = indices[i]
			} else {
				idx = indices[rng.Intn(len(indices))]
			}
			out.X = append(out.X, ds.X[idx])
			out.Y = append(out.Y, label)
		}
	}

	if maxSamples > 0 && out.Len() > maxSamples {
		perm := rng.Perm(out.Len())[:maxSamples]
		capped := &Dataset{}
		for _, idx := range perm {
			capped.X = append(capped.X, out.X[idx])
			capped.Y = append(capped.Y, out.Y[idx])
		}
		return capped
	}

	return out
}

// classOrder returns class labels in first-seen order for deterministic
// output.
func classOrder(labels []string) []string {
	seen := make(map[string]bool)
	var order []string
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			order = append(order, label)
		}
	}
	return order
}

// ClassCounts returns per-class sample counts.
func ClassCounts(ds *Dataset) map[string]int {
	counts := make(map[string]int)
	for _, label := range ds.Y {
		counts[label]++
	}
	return counts
}
