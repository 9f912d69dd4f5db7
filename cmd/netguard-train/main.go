// netguard-train is the offline model pipeline: preprocess KDD CSV data,
// fit the random forest, and evaluate a trained model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "netguard-train",
		Short: "Train and evaluate the NetGuard intrusion detection model",
	}

	root.AddCommand(newPreprocessCmd())
	root.AddCommand(newFitCmd())
	root.AddCommand(newEvalCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
