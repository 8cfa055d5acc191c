package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Strategist/internal/store"
)

type historyOptions struct {
	pair  string
	limit int
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	ho := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past evaluations from the history store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd.Context(), opts, ho, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&ho.pair, "pair", "", "Only show evaluations of this integration pair")
	cmd.Flags().IntVarP(&ho.limit, "limit", "n", 20, "Show at most this many of the newest evaluations (0 for all)")

	return cmd
}

func runHistory(ctx context.Context, opts *rootOptions, ho *historyOptions, stdout, stderr io.Writer) error {
	cfg, logger, err := opts.load(stderr)
	if err != nil {
		return err
	}
	if cfg.History.Backend == "memory" {
		return fmt.Errorf("history backend %q keeps no records between runs; configure badger or postgres", cfg.History.Backend)
	}

	hist, err := openHistory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	recs, err := hist.ListRecords(ctx, store.HistoryFilter{IntegrationPair: ho.pair, Limit: ho.limit})
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(stdout, "No evaluations recorded.")
		return nil
	}
	printHistory(stdout, recs)
	return nil
}

func printHistory(w io.Writer, recs []*store.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPAIR\tBEST\tSCORES")
	for _, rec := range recs {
		best, _ := bestFinalScore(rec.FinalResults)
		scores := make([]string, len(rec.FinalResults))
		for i, fs := range rec.FinalResults {
			scores[i] = fmt.Sprintf("%s=%.4f", fs.Strategy, fs.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			rec.Timestamp.Format(time.RFC3339), rec.IntegrationPair, best.Strategy, strings.Join(scores, " "))
	}
	tw.Flush()
}

// bestFinalScore picks the highest score; ties go to the earlier strategy.
func bestFinalScore(results []store.FinalScore) (store.FinalScore, bool) {
	if len(results) == 0 {
		return store.FinalScore{}, false
	}
	best := results[0]
	for _, fs := range results[1:] {
		if fs.Score > best.Score {
			best = fs
		}
	}
	return best, true
}
