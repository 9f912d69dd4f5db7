package main

import (
	"fmt"
	"os"
	"sort"

	"netguard-ids/internal/dataset"
	"netguard-ids/internal/detector/forest"

	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		modelFile string
		dataFile  string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a trained model against a labeled dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(modelFile)
			if err != nil {
				return fmt.Errorf("failed to read model %s: %v", modelFile, err)
			}

			rf := forest.New()
			if err := rf.Load(raw); err != nil {
				return fmt.Errorf("failed to load model: %v", err)
			}

			ds, err := dataset.Load(dataFile)
			if err != nil {
				return err
			}

			predicted, _, err := rf.Predict(ds.X)
			if err != nil {
				return err
			}

			correct := 0
			perClass := make(map[string]*classStats)
			for i, label := range predicted {
				actual := ds.Y[i]
				if perClass[actual] == nil {
					perClass[actual] = &classStats{}
				}
				perClass[actual].total++
				if label == actual {
					correct++
					perClass[actual].correct++
				}
			}

			fmt.Printf("Overall accuracy: %.4f (%d/%d)\n\n", float64(correct)/float64(ds.Len()), correct, ds.Len())
			fmt.Printf("%-20s %8s %8s %8s\n", "class", "correct", "total", "recall")

			classes := make([]string, 0, len(perClass))
			for class := range perClass {
				classes = append(classes, class)
			}
			sort.Strings(classes)
			for _, class := range classes {
				st := perClass[class]
				fmt.Printf("%-20s %8d %8d %8.4f\n", class, st.correct, st.total, float64(st.correct)/float64(st.total))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "models/random_forest_tuned.gob", "Trained model file")
	cmd.Flags().StringVar(&dataFile, "data", "data/kdd_test_processed.csv", "Labeled evaluation CSV")

	return cmd
}

type classStats struct {
	correct int
	total   int
}
