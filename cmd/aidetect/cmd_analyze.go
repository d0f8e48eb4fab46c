package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"ai-detector/internal/detector"
	"ai-detector/internal/heuristic"
)

type analyzeFlags struct {
	text    string
	jsonOut bool
}

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [FILE]",
		Short: "Score one text",
		Long:  "Score a single text read from --text, FILE, or standard input.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.text, "text", "t", "", "text to analyze")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print the result as JSON")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootFlags, flags *analyzeFlags, args []string) error {
	text, err := readInput(cmd, flags.text, args)
	if err != nil {
		return err
	}

	a, err := openApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Analyze(cmd.Context(), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res)
	return nil
}

func readInput(cmd *cobra.Command, text string, args []string) (string, error) {
	if text != "" {
		return text, nil
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printResult(w io.Writer, res *detector.Result) {
	fmt.Fprintf(w, "Verdict:           %s\n", res.Verdict)
	fmt.Fprintf(w, "AI probability:    %.1f%%\n", res.AIProbability*100)
	fmt.Fprintf(w, "Human probability: %.1f%%\n", res.HumanProbability*100)
	fmt.Fprintf(w, "Confidence:        %.2f (%s)\n", res.Confidence, res.Level)
	fmt.Fprintf(w, "Source:            %s\n", res.Source)
	if res.ModelVersion != "" {
		fmt.Fprintf(w, "Model version:     %s\n", res.ModelVersion)
	}
	fmt.Fprintf(w, "Words:             %d\n", res.WordCount)

	if len(res.Factors) > 0 {
		fmt.Fprintln(w, "Factors:")
		for _, name := range heuristic.FactorNames {
			if v, ok := res.Factors[name]; ok {
				fmt.Fprintf(w, "  %-22s %+.3f\n", name, v)
			}
		}
	}
	if len(res.TopFeatures) > 0 {
		fmt.Fprintln(w, "Top features:")
		for _, c := range res.TopFeatures {
			fmt.Fprintf(w, "  %-32s %+.3f\n", c.Feature, c.Contribution)
		}
	}
	if len(res.FailedGroups) > 0 {
		groups := append([]string(nil), res.FailedGroups...)
		sort.Strings(groups)
		fmt.Fprintf(w, "Unavailable feature groups: %v\n", groups)
	}
}
