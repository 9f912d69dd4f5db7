package main

import (
	"fmt"
	"os"
	"time"

	"netguard-ids/internal/dataset"
	"netguard-ids/internal/detector/forest"

	"github.com/spf13/cobra"
)

func newFitCmd() *cobra.Command {
	var (
		dataFile    string
		valFile     string
		outFile     string
		trees       int
		maxDepth    int
		minSplit    int
		balance     bool
		maxSamples  int
		valFraction float64
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Train the random forest on preprocessed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(dataFile)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d samples, %d classes\n", ds.Len(), len(dataset.ClassCounts(ds)))

			var train, val *dataset.Dataset
			if valFile != "" {
				train = ds
				val, err = dataset.Load(valFile)
				if err != nil {
					return err
				}
			} else {
				train, val = dataset.Split(ds, valFraction, seed)
			}

			if balance {
				before := train.Len()
				train = dataset.Oversample(train, maxSamples, seed)
				fmt.Printf("Balanced classes: %d -> %d samples\n", before, train.Len())
			}

			rf := forest.New(
				forest.WithTrees(trees),
				forest.WithMaxDepth(maxDepth),
				forest.WithMinSamplesSplit(minSplit),
				forest.WithSeed(seed),
			)

			fmt.Printf("Training random forest (%d trees, max depth %d)...\n", trees, maxDepth)
			start := time.Now()
			if err := rf.Fit(train.X, train.Y); err != nil {
				return err
			}
			fmt.Printf("Training completed in %s\n", time.Since(start).Round(time.Second))

			accuracy, err := evaluate(rf, val)
			if err != nil {
				return err
			}
			fmt.Printf("Validation accuracy: %.4f (%d samples)\n", accuracy, val.Len())

			data, err := rf.Save()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Model saved to %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "data/kdd_train_processed.csv", "Preprocessed training CSV")
	cmd.Flags().StringVar(&valFile, "val", "", "Optional validation CSV (otherwise split from --data)")
	cmd.Flags().StringVar(&outFile, "out", "models/random_forest_tuned.gob", "Output model file")
	cmd.Flags().IntVar(&trees, "trees", 100, "Number of trees")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 25, "Maximum tree depth")
	cmd.Flags().IntVar(&minSplit, "min-samples-split", 3, "Minimum node size to split")
	cmd.Flags().BoolVar(&balance, "balance", false, "Oversample minority classes")
	cmd.Flags().IntVar(&maxSamples, "max-samples", 100000, "Sample cap after balancing")
	cmd.Flags().Float64Var(&valFraction, "val-fraction", 0.2, "Validation split fraction")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	return cmd
}

func evaluate(rf *forest.RandomForest, ds *dataset.Dataset) (float64, error) {
	if ds.Len() == 0 {
		return 0, fmt.Errorf("empty evaluation set")
	}

	labels, _, err := rf.Predict(ds.X)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i, label := range labels {
		if label == ds.Y[i] {
			correct++
		}
	}
	return float64(correct) / float64(ds.Len()), nil
}
