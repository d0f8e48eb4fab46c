package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ai-detector/internal/dataset"
	"ai-detector/internal/detector"
	"ai-detector/internal/ml"
)

type trainFlags struct {
	corpus      string
	out         string
	validation  float64
	seed        int64
	parallelism int
	jsonOut     bool
}

func newTrainCmd(root *rootFlags) *cobra.Command {
	flags := &trainFlags{}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and activate a classifier",
		Long: "Train a logistic-regression classifier on a labeled corpus, save it,\n" +
			"record it in the model registry and make it the active model.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.corpus, "corpus", "c", "", "labeled corpus (.csv or .json)")
	f.StringVarP(&flags.out, "out", "o", "", "artifact path (default MODEL_PATH)")
	f.Float64Var(&flags.validation, "val", 0, "held-out fraction (default VALIDATION_FRACTION)")
	f.Int64Var(&flags.seed, "seed", 0, "split seed (default TRAIN_SEED)")
	f.IntVarP(&flags.parallelism, "parallelism", "p", 0, "concurrent extractions (default PARALLELISM)")
	f.BoolVar(&flags.jsonOut, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func runTrain(cmd *cobra.Command, root *rootFlags, flags *trainFlags) error {
	corpus, err := dataset.Load(flags.corpus)
	if err != nil {
		return err
	}

	a, err := openApp(root)
	if err != nil {
		return err
	}
	defer a.Close()
	a.startMetricsServer()

	opts := ml.DefaultTrainOptions()
	opts.ValidationFraction = a.settings.ValidationFraction
	opts.Seed = a.settings.TrainSeed
	opts.Parallelism = a.settings.Parallelism
	if cmd.Flags().Changed("val") {
		opts.ValidationFraction = flags.validation
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = flags.seed
	}
	if flags.parallelism > 0 {
		opts.Parallelism = flags.parallelism
	}
	if opts.ValidationFraction <= 0 || opts.ValidationFraction >= 1 {
		return fmt.Errorf("validation fraction must be between 0 and 1, got %g", opts.ValidationFraction)
	}

	res, err := a.svc.TrainAndPersist(cmd.Context(), corpus, opts, flags.out)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}
	printTrainResult(out, res)
	return nil
}

func printTrainResult(w io.Writer, res *detector.TrainResult) {
	r := res.Report
	fmt.Fprintf(w, "Model %s saved to %s\n", res.Model.Version, res.Path)
	fmt.Fprintf(w, "Samples:   %d train, %d test (%d failed extractions)\n", r.TrainSamples, r.TestSamples, r.FailedExtractions)
	fmt.Fprintf(w, "Features:  %d\n", r.FeatureCount)
	fmt.Fprintf(w, "Converged: %t after %d iterations\n", r.Converged, r.Iterations)
	fmt.Fprintf(w, "Train accuracy: %.3f\n", r.TrainAccuracy)
	fmt.Fprintf(w, "Test accuracy:  %.3f\n", r.TestAccuracy)
	fmt.Fprintf(w, "Precision:      %.3f\n", r.TestPrecision)
	fmt.Fprintf(w, "Recall:         %.3f\n", r.TestRecall)
	fmt.Fprintf(w, "F1:             %.3f\n", r.TestF1)
	fmt.Fprintf(w, "ROC AUC:        %.3f\n", r.TestROCAUC)
	fmt.Fprintf(w, "Confusion matrix [[TN FP] [FN TP]]: %v\n", r.ConfusionMatrix)

	fmt.Fprintln(w, "Most influential features:")
	for _, fw := range res.Model.Importance(5) {
		fmt.Fprintf(w, "  %-32s %+.3f (%.1f%%)\n", fw.Feature, fw.Coefficient, fw.Importance*100)
	}
}
