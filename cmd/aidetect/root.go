package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootFlags override the loaded configuration when set.
type rootFlags struct {
	logLevel  string
	modelPath string
	dataPath  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "aidetect",
		Short:         "Detect machine-generated text",
		Long:          "aidetect estimates the probability that a text was written by a language model,\nusing a trained logistic-regression classifier when one is available and a\nrule-based heuristic scorer otherwise.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pf.StringVar(&flags.modelPath, "model", "", "model artifact path (overrides MODEL_PATH)")
	pf.StringVar(&flags.dataPath, "data", "", "model registry database path (overrides DATA_PATH)")

	root.AddCommand(newAnalyzeCmd(flags))
	root.AddCommand(newBatchCmd(flags))
	root.AddCommand(newTrainCmd(flags))
	root.AddCommand(newModelsCmd(flags))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aidetect %s\n", version)
		},
	}
}
