package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Strategist/internal/session"
)

// evaluationFile is the input of the evaluate command. Numbers are read as text
// so a bad cell is reported with its position, the same way the wizard does.
type evaluationFile struct {
	IntegrationPair string     `yaml:"integration_pair"`
	Strategies      []string   `yaml:"strategies"`
	Weights         []string   `yaml:"weights"`
	Tiers           []string   `yaml:"tiers"`
	Scores          [][]string `yaml:"scores"`
}

type evaluateOptions struct {
	file     string
	pair     string
	noExport bool
}

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	eo := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate -f <input.yaml>",
		Short: "Score the strategies described in a YAML file",
		Long: `Score the strategies described in a YAML file.

The file lists the integration pair, the strategy names, one weight (or one
low/medium/high tier) per configured criterion and one row of scores per
strategy:

  integration_pair: ERP-CRM
  strategies: [Point-to-point, Middleware]
  weights: [0.2, 0.2, 0.2, 0.1, 0.2, 0.1]
  scores:
    - [8, 5, 6, 3, 4, 2]
    - [6, 7, 5, 2, 3, 3]

Weights that do not sum to 1.0 are rescaled. The result is written to the
export directory and appended to the history store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd.Context(), opts, eo, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&eo.file, "file", "f", "", "Evaluation input file (required)")
	cmd.Flags().StringVar(&eo.pair, "pair", "", "Override the integration pair name from the file")
	cmd.Flags().BoolVar(&eo.noExport, "no-export", false, "Skip writing the CSV export")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runEvaluate(ctx context.Context, opts *rootOptions, eo *evaluateOptions, stdout, stderr io.Writer) error {
	cfg, logger, err := opts.load(stderr)
	if err != nil {
		return err
	}

	in, err := loadEvaluationFile(eo.file)
	if err != nil {
		return err
	}
	if eo.pair != "" {
		in.IntegrationPair = eo.pair
	}

	var weights []float64
	if len(in.Tiers) > 0 {
		weights, err = tierWeights(in.Tiers, cfg.Evaluation.TierWeights)
	} else {
		weights, err = session.ParseWeights(in.Weights)
	}
	if err != nil {
		return err
	}
	scores, err := session.ParseScores(in.Scores)
	if err != nil {
		return err
	}

	hist, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	events := connectHermes(ctx, cfg, logger)
	if events != nil {
		defer events.Close()
	}

	eval := newEvaluator(cfg, hist, events, !eo.noExport, logger)
	out, err := eval.Run(ctx, session.Request{
		IntegrationPair: in.IntegrationPair,
		Strategies:      in.Strategies,
		Weights:         weights,
		Scores:          scores,
	})
	if err != nil {
		return err
	}

	printOutcome(stdout, in.IntegrationPair, out)
	if out.Warnings != nil {
		fmt.Fprintf(stderr, "warning: %v\n", out.Warnings)
	}
	return nil
}

func loadEvaluationFile(path string) (*evaluationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var in evaluationFile
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return &in, nil
}

func printOutcome(w io.Writer, pair string, out *session.Outcome) {
	if pair != "" {
		fmt.Fprintf(w, "Integration pair: %s\n", pair)
	}
	if out.WeightsRescaled {
		fmt.Fprintf(w, "Weights don't sum to 1.0 - normalized to %s\n", formatFloats(out.Weights))
	}
	for _, e := range out.Result.Entries {
		fmt.Fprintf(w, "%s: %.4f\n", e.Strategy, e.Score)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Best strategy: %s (%.4f)\n", out.Best.Strategy, out.Best.Score)
	if len(out.Tied) > 1 {
		names := make([]string, len(out.Tied))
		for i, e := range out.Tied {
			names[i] = e.Strategy
		}
		fmt.Fprintf(w, "Tied for best: %s\n", strings.Join(names, ", "))
	}
	if len(out.Frontier) > 0 {
		fmt.Fprintf(w, "Pareto frontier: %s\n", strings.Join(out.Frontier, ", "))
	}
	if out.ExportPath != "" {
		fmt.Fprintf(w, "Results written to %s\n", out.ExportPath)
	}
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strings.Join(parts, ", ")
}
