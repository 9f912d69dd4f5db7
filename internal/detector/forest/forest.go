// Package forest implements a random forest classifier for network
// connection records (CART trees, gini impurity, bootstrap sampling,
// majority vote).
package forest

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// RandomForest is an ensemble of decision trees trained on labeled
// connection feature vectors.
type RandomForest struct {
	mu sync.RWMutex

	// Configuration
	nTrees          int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 means sqrt(nFeatures), chosen at fit time
	rng             *rand.Rand

	// Trained model
	trees   []*Node
	classes []string
	trained bool
}

// Node is a node in a decision tree. Exported fields keep the model
// serializable with encoding/gob.
type Node struct {
	// Split parameters (internal nodes)
	SplitFeature int
	SplitValue   float64

	// Children
	Left  *Node
	Right *Node

	// Leaf information: per-class sample distribution, normalized.
	Dist []float64
}

// Option configures a RandomForest.
type Option func(*RandomForest)

// WithTrees sets the number of trees in the ensemble.
func WithTrees(n int) Option {
	return func(f *RandomForest) {
		f.nTrees = n
	}
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) Option {
	return func(f *RandomForest) {
		f.maxDepth = d
	}
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(f *RandomForest) {
		f.minSamplesSplit = n
	}
}

// WithMaxFeatures sets how many features are considered per split.
func WithMaxFeatures(n int) Option {
	return func(f *RandomForest) {
		f.maxFeatures = n
	}
}

// WithSeed sets the random seed for reproducibility.
func WithSeed(seed int64) Option {
	return func(f *RandomForest) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a new RandomForest with the given options.
func New(opts ...Option) *RandomForest {
	f := &RandomForest{
		nTrees:          100,
		maxDepth:        25,
		minSamplesSplit: 3,
		rng:             rand.New(rand.NewSource(42)),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Classes returns the class labels in model order.
func (f *RandomForest) Classes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.classes))
	copy(out, f.classes)
	return out
}

// Trained reports whether the forest has been fit or loaded.
func (f *RandomForest) Trained() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.trained
}

// Fit trains the forest on labeled samples. Each row of data is one
// feature vector; labels must be the same length as data.
func (f *RandomForest) Fit(data [][]float64, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(data) == 0 {
		return errors.New("empty training data")
	}
	if len(data) != len(labels) {
		return errors.New("data and labels length mismatch")
	}

	nSamples := len(data)
	nFeatures := len(data[0])

	// Build the class index in a stable order.
	classIndex := make(map[string]int)
	f.classes = f.classes[:0]
	for _, label := range labels {
		if _, ok := classIndex[label]; !ok {
			classIndex[label] = len(f.classes)
			f.classes = append(f.classes, label)
		}
	}

	y := make([]int, nSamples)
	for i, label := range labels {
		y[i] = classIndex[label]
	}

	maxFeatures := f.maxFeatures
	if maxFeatures <= 0 || maxFeatures > nFeatures {
		maxFeatures = int(math.Ceil(math.Sqrt(float64(nFeatures))))
	}

	f.trees = make([]*Node, f.nTrees)
	for i := 0; i < f.nTrees; i++ {
		// Bootstrap sample with replacement
		indices := make([]int, nSamples)
		for j := range indices {
			indices[j] = f.rng.Intn(nSamples)
		}
		f.trees[i] = f.buildNode(data, y, indices, nFeatures, maxFeatures, 0)
	}

	f.trained = true
	return nil
}

func (f *RandomForest) buildNode(data [][]float64, y, indices []int, nFeatures, maxFeatures, depth int) *Node {
	counts := make([]float64, len(f.classes))
	for _, idx := range indices {
		counts[y[idx]]++
	}

	if depth >= f.maxDepth || len(indices) < f.minSamplesSplit || isPure(counts) {
		return leaf(counts)
	}

	feature, value, ok := f.bestSplit(data, y, indices, nFeatures, maxFeatures)
	if !ok {
		return leaf(counts)
	}

	var left, right []int
	for _, idx := range indices {
		if data[idx][feature] < value {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf(counts)
	}

	return &Node{
		SplitFeature: feature,
		SplitValue:   value,
		Left:         f.buildNode(data, y, left, nFeatures, maxFeatures, depth+1),
		Right:        f.buildNode(data, y, right, nFeatures, maxFeatures, depth+1),
	}
}

// bestSplit searches a random feature subset for the gini-optimal
// threshold. Returns ok=false when no split separates the node.
func (f *RandomForest) bestSplit(data [][]float64, y, indices []int, nFeatures, maxFeatures int) (int, float64, bool) {
	bestGini := math.Inf(1)
	bestFeature := -1
	bestValue := 0.0

	features := f.rng.Perm(nFeatures)[:maxFeatures]

	values := make([]float64, 0, len(indices))
	for _, feature := range features {
		values = values[:0]
		for _, idx := range indices {
			values = append(values, data[idx][feature])
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			gini := f.splitGini(data, y, indices, feature, threshold)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feature
				bestValue = threshold
			}
		}
	}

	return bestFeature, bestValue, bestFeature >= 0
}

func (f *RandomForest) splitGini(data [][]float64, y, indices []int, feature int, threshold float64) float64 {
	leftCounts := make([]float64, len(f.classes))
	rightCounts := make([]float64, len(f.classes))
	var nLeft, nRight float64

	for _, idx := range indices {
		if data[idx][feature] < threshold {
			leftCounts[y[idx]]++
			nLeft++
		} else {
			rightCounts[y[idx]]++
			nRight++
		}
	}

	total := nLeft + nRight
	return (nLeft/total)*gini(leftCounts, nLeft) + (nRight/total)*gini(rightCounts, nRight)
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []float64) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func leaf(counts []float64) *Node {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	dist := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			dist[i] = c / total
		}
	}
	return &Node{Dist: dist}
}

// Predict returns the predicted label and confidence for each sample.
// Confidence is the averaged vote fraction for the winning class.
func (f *RandomForest) Predict(data [][]float64) ([]string, []float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.trained {
		return nil, nil, errors.New("model not trained")
	}

	labels := make([]string, len(data))
	confidences := make([]float64, len(data))
	for i, sample := range data {
		labels[i], confidences[i] = f.predictOne(sample)
	}
	return labels, confidences, nil
}

// PredictOne classifies a single sample.
func (f *RandomForest) PredictOne(sample []float64) (string, float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.trained {
		return "", 0, errors.New("model not trained")
	}

	label, confidence := f.predictOne(sample)
	return label, confidence, nil
}

func (f *RandomForest) predictOne(sample []float64) (string, float64) {
	votes := make([]float64, len(f.classes))
	for _, tree := range f.trees {
		dist := descend(sample, tree)
		for i, p := range dist {
			votes[i] += p
		}
	}

	best := 0
	for i := range votes {
		if votes[i] > votes[best] {
			best = i
		}
	}

	return f.classes[best], votes[best] / float64(len(f.trees))
}

func descend(sample []float64, n *Node) []float64 {
	for n.Left != nil && n.Right != nil {
		if sample[n.SplitFeature] < n.SplitValue {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Dist
}

// savedModel is the gob wire format for a trained forest.
type savedModel struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	Classes         []string
	Trees           []*Node
}

// Save serializes the trained model to bytes.
func (f *RandomForest) Save() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.trained {
		return nil, errors.New("model not trained")
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(savedModel{
		NTrees:          f.nTrees,
		MaxDepth:        f.maxDepth,
		MinSamplesSplit: f.minSamplesSplit,
		Classes:         f.classes,
		Trees:           f.trees,
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Load deserializes a trained model from bytes.
func (f *RandomForest) Load(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var saved savedModel
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&saved); err != nil {
		return err
	}

	f.nTrees = saved.NTrees
	f.maxDepth = saved.MaxDepth
	f.minSamplesSplit = saved.MinSamplesSplit
	f.classes = saved.Classes
	f.trees = saved.Trees
	f.trained = true

	return nil
}
