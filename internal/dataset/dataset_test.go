package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netguard-ids/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kddRow builds a raw KDD CSV row: categorical protocol/service/flag,
// src_bytes, the remaining feature columns zeroed, plus the label and any
// trailing columns.
func kddRow(protocol, service, flag string, srcBytes int, label string, trailing ...string) string {
	cols := make([]string, features.NumFeatures)
	for i := range cols {
		cols[i] = "0"
	}
	cols[1] = protocol
	cols[2] = service
	cols[3] = flag
	cols[4] = fmt.Sprintf("%d", srcBytes)

	cols = append(cols, label)
	cols = append(cols, trailing...)
	return strings.Join(cols, ",")
}

func writeTempCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLoadEncodesCategoricals(t *testing.T) {
	path := writeTempCSV(t,
		kddRow("tcp", "http", "S0", 1500, "neptune"),
		kddRow("udp", "other", "SF", 80, "normal"),
	)

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, 0.0, ds.X[0][1], "tcp")
	assert.Equal(t, 1.0, ds.X[0][2], "http")
	assert.Equal(t, 1.0, ds.X[0][3], "S0")
	assert.Equal(t, 1500.0, ds.X[0][4])
	assert.Equal(t, "neptune", ds.Y[0])

	assert.Equal(t, 1.0, ds.X[1][1], "udp")
	assert.Equal(t, "normal", ds.Y[1])
}

func TestLoadSkipsHeader(t *testing.T) {
	header := strings.Join(append(append([]string{}, features.FeatureOrder...), "label"), ",")
	path := writeTempCSV(t,
		header,
		kddRow("tcp", "http", "SF", 100, "normal"),
	)

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoadToleratesDifficultyColumn(t *testing.T) {
	path := writeTempCSV(t,
		kddRow("icmp", "other", "SF", 64, "smurf", "19"),
	)

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "smurf", ds.Y[0])
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("short row", func(t *testing.T) {
		path := writeTempCSV(t, "1,tcp,http,SF,100,normal")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("non numeric feature", func(t *testing.T) {
		row := kddRow("tcp", "http", "SF", 100, "normal")
		row = strings.Replace(row, "100,0", "100,bogus", 1)
		path := writeTempCSV(t, row)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSplitDeterministicAndComplete(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 100; i++ {
		ds.X = append(ds.X, []float64{float64(i)})
		ds.Y = append(ds.Y, fmt.Sprintf("label-%d", i%4))
	}

	train1, val1 := Split(ds, 0.2, 42)
	train2, val2 := Split(ds, 0.2, 42)

	assert.Equal(t, 80, train1.Len())
	assert.Equal(t, 20, val1.Len())
	assert.Equal(t, train1.X, train2.X, "same seed gives the same split")
	assert.Equal(t, val1.Y, val2.Y)

	seen := make(map[float64]bool)
	for _, row := range append(append([][]float64{}, train1.X...), val1.X...) {
		seen[row[0]] = true
	}
	assert.Len(t, seen, 100, "every sample lands in exactly one split")
}

func TestOversampleBalancesClasses(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 90; i++ {
		ds.X = append(ds.X, []float64{float64(i)})
		ds.Y = append(ds.Y, "normal")
	}
	for i := 0; i < 10; i++ {
		ds.X = append(ds.X, []float64{float64(100 + i)})
		ds.Y = append(ds.Y, "neptune")
	}

	balanced := Oversample(ds, 0, 42)
	counts := ClassCounts(balanced)
	assert.Equal(t, 90, counts["normal"])
	assert.Equal(t, 90, counts["neptune"], "minority class is sampled up to the majority count")
}

func TestOversampleRespectsCap(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 50; i++ {
		ds.X = append(ds.X, []float64{float64(i)})
		if i < 40 {
			ds.Y = append(ds.Y, "normal")
		} else {
			ds.Y = append(ds.Y, "back")
		}
	}

	capped := Oversample(ds, 30, 1)
	assert.Equal(t, 30, capped.Len())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	orig := &Dataset{
		X: [][]float64{
			{0, 0, 1, 0, 1500, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 1, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
			{0, 1, 0, 0, 80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 1, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		},
		Y: []string{"neptune", "normal"},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(orig, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig.X, loaded.X)
	assert.Equal(t, orig.Y, loaded.Y)
}

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{}
	data := [][]float64{
		{1, 10, 5},
		{3, 10, 7},
	}

	scaled, err := s.FitTransform(data)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, scaled[0][0], 1e-9)
	assert.InDelta(t, 1.0, scaled[1][0], 1e-9)
	assert.Equal(t, 0.0, scaled[0][1], "constant column centers to zero without dividing by zero")
	assert.Equal(t, 1.0, s.Std[1], "constant column std clamps to 1")

	row := s.TransformOne([]float64{2, 10, 6})
	assert.InDelta(t, 0.0, row[0], 1e-9)
	assert.InDelta(t, 0.0, row[2], 1e-9)
}

func TestStandardScalerEmptyData(t *testing.T) {
	s := &StandardScaler{}
	assert.Error(t, s.Fit(nil))
}
