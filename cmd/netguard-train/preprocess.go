package main

import (
	"fmt"
	"os"
	"path/filepath"

	"netguard-ids/internal/dataset"

	"github.com/spf13/cobra"
)

func newPreprocessCmd() *cobra.Command {
	var (
		trainFile   string
		testFile    string
		outDir      string
		valFraction float64
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Encode, scale, and split raw KDD CSV data",
		RunE: func(cmd *cobra.Command, args []string) error {
			train, err := dataset.Load(trainFile)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d training samples from %s\n", train.Len(), trainFile)

			// Scale with statistics fit on the training set only.
			scaler := &dataset.StandardScaler{}
			if _, err := scaler.FitTransform(train.X); err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			trainSplit, valSplit := dataset.Split(train, valFraction, seed)
			fmt.Printf("Split: %d train / %d validation\n", trainSplit.Len(), valSplit.Len())

			if err := dataset.WriteCSV(trainSplit, filepath.Join(outDir, "kdd_train_processed.csv")); err != nil {
				return err
			}
			if err := dataset.WriteCSV(valSplit, filepath.Join(outDir, "kdd_val_processed.csv")); err != nil {
				return err
			}

			if testFile != "" {
				test, err := dataset.Load(testFile)
				if err != nil {
					return err
				}
				scaler.Transform(test.X)
				if err := dataset.WriteCSV(test, filepath.Join(outDir, "kdd_test_processed.csv")); err != nil {
					return err
				}
				fmt.Printf("Processed %d test samples from %s\n", test.Len(), testFile)
			}

			fmt.Printf("Preprocessing complete. Processed files saved in %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&trainFile, "train", "data/kdd_train.csv", "Raw training CSV")
	cmd.Flags().StringVar(&testFile, "test", "", "Optional raw test CSV")
	cmd.Flags().StringVar(&outDir, "out", "data", "Output directory")
	cmd.Flags().Float64Var(&valFraction, "val-fraction", 0.2, "Validation split fraction")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	return cmd
}
