package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"netguard-ids/internal/features"
)

// WriteCSV saves a dataset with encoded feature columns and the label as
// the final column, with a header row.
func WriteCSV(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, 0, features.NumFeatures+1)
	header = append(header, features.FeatureOrder...)
	header = append(header, "label")
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, features.NumFeatures+1)
	for i := range ds.X {
		for j, v := range ds.X[i] {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		row[features.NumFeatures] = ds.Y[i]
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
