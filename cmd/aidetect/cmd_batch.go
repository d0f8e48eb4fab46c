package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ai-detector/internal/dataset"
	"ai-detector/internal/ml"
)

type batchFlags struct {
	parallelism    int
	driftThreshold float64
}

func newBatchCmd(root *rootFlags) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Score many texts",
		Long: "Score every text in FILE and print one JSON object per line.\n" +
			"A .csv or .json dataset is scored text by text and its labels are used to\n" +
			"report accuracy; any other file is read as one text per line.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, flags, args[0])
		},
	}

	cmd.Flags().IntVarP(&flags.parallelism, "parallelism", "p", 0, "concurrent analyses (default PARALLELISM)")
	cmd.Flags().Float64Var(&flags.driftThreshold, "drift-threshold", ml.DefaultDriftThreshold, "feature drift alert threshold")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootFlags, flags *batchFlags, path string) error {
	texts, labels, err := readBatch(path)
	if err != nil {
		return err
	}

	a, err := openApp(root)
	if err != nil {
		return err
	}
	defer a.Close()
	a.startMetricsServer()

	parallelism := flags.parallelism
	if parallelism <= 0 {
		parallelism = a.settings.Parallelism
	}

	items := a.svc.AnalyzeBatch(cmd.Context(), texts, parallelism)

	enc := json.NewEncoder(cmd.OutOrStdout())
	failed, correct := 0, 0
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
		if item.Err != nil {
			failed++
			continue
		}
		if labels != nil && item.Result.Prediction == labels[item.Index] {
			correct++
		}
	}

	ev := log.Info().
		Int("texts", len(texts)).
		Int("failed", failed).
		Float64("error_rate", a.metrics.GetErrorRate())
	if labels != nil && len(texts) > failed {
		ev = ev.Float64("accuracy", float64(correct)/float64(len(texts)-failed))
	}
	ev.Msg("Batch complete")

	for _, alert := range a.svc.Drift(items, flags.driftThreshold) {
		log.Warn().
			Str("feature", alert.Feature).
			Str("severity", alert.Severity).
			Float64("drift_score", alert.Score).
			Float64("baseline_mean", alert.BaselineMean).
			Float64("current_mean", alert.CurrentMean).
			Msg("Feature drift detected, consider retraining")
	}

	return nil
}

// readBatch returns the texts of path and, for labeled datasets, their labels.
func readBatch(path string) ([]string, []int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		samples, err := dataset.Load(path)
		if err != nil {
			return nil, nil, err
		}
		texts, labels := splitSamples(samples)
		return texts, labels, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	texts, err := readLines(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read batch file: %w", err)
	}
	return texts, nil, nil
}

func splitSamples(samples []ml.Sample) ([]string, []int) {
	texts := make([]string, len(samples))
	labels := make([]int, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		labels[i] = s.Label
	}
	return texts, labels
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
