package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
	"github.com/MikeSquared-Agency/Strategist/internal/session"
)

// errBack is returned by a prompter when the user asks for the previous step.
var errBack = errors.New("back")

// prompter collects one step's input from the user. Values are returned as
// entered; the wizard parses and validates them against the session state.
type prompter interface {
	Welcome(minStrategies, maxStrategies int) (pair string, count int, err error)
	Setup(count int, criteria []scoring.Criterion, tiers bool) (names, weights []string, err error)
	Scores(strategies []string, criteria []scoring.Criterion) ([][]string, error)
	Again() (bool, error)
}

type wizardOptions struct {
	tiers    bool
	noExport bool
}

func newWizardCommand(opts *rootOptions) *cobra.Command {
	wo := &wizardOptions{}
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Interactively enter strategies, weights and scores",
		Long: `Walk through an evaluation step by step: name the integration pair and
the number of strategies, enter strategy names and criterion weights, score
each strategy, then review the ranking. Results are exported and recorded
exactly like the evaluate command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWizardCommand(cmd.Context(), opts, wo, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&wo.tiers, "tiers", false, "Pick low/medium/high importance instead of typing numeric weights")
	cmd.Flags().BoolVar(&wo.noExport, "no-export", false, "Skip writing the CSV export")

	return cmd
}

func runWizardCommand(ctx context.Context, opts *rootOptions, wo *wizardOptions, in io.Reader, stdout, stderr io.Writer) error {
	cfg, logger, err := opts.load(stderr)
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

	st := session.NewState(newEvaluator(cfg, hist, events, !wo.noExport, logger))
	w := &wizard{
		state:   st,
		prompt:  newHuhPrompter(in, stdout),
		out:     stdout,
		tiers:   wo.tiers,
		mapping: cfg.Evaluation.TierWeights,
		bounds:  [2]int{cfg.Evaluation.MinStrategies, cfg.Evaluation.MaxStrategies},
	}
	err = w.run(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

// wizard drives a session.State through its steps with a prompter.
type wizard struct {
	state   *session.State
	prompt  prompter
	out     io.Writer
	tiers   bool
	mapping config.TierWeights
	bounds  [2]int
}

func (w *wizard) run(ctx context.Context) error {
	for {
		switch w.state.Step() {
		case session.StepWelcome:
			pair, n, err := w.prompt.Welcome(w.bounds[0], w.bounds[1])
			if err != nil {
				return err
			}
			if err := w.state.Start(pair, n); err != nil {
				w.report(err)
			}

		case session.StepSetup:
			names, raw, err := w.prompt.Setup(w.state.StrategyCount(), w.state.Criteria(), w.tiers)
			if errors.Is(err, errBack) {
				w.state.Back()
				continue
			}
			if err != nil {
				return err
			}
			if err := w.configure(names, raw); err != nil {
				w.report(err)
				continue
			}
			if w.state.WeightsRescaled() {
				fmt.Fprintf(w.out, "Weights don't sum to 1.0 - normalized to %s\n", formatFloats(w.state.Weights()))
			}

		case session.StepScores:
			raw, err := w.prompt.Scores(w.state.Strategies(), w.state.Criteria())
			if errors.Is(err, errBack) {
				w.state.Back()
				continue
			}
			if err != nil {
				return err
			}
			scores, err := session.ParseScores(raw)
			if err != nil {
				w.report(err)
				continue
			}
			out, err := w.state.Calculate(ctx, scores)
			if err != nil {
				w.report(err)
				continue
			}
			fmt.Fprintln(w.out)
			printOutcome(w.out, w.state.IntegrationPair(), out)
			if out.Warnings != nil {
				fmt.Fprintf(w.out, "warning: %v\n", out.Warnings)
			}

		case session.StepResults:
			again, err := w.prompt.Again()
			if err != nil {
				return err
			}
			if !again {
				return nil
			}
			w.state.Reset()
		}
	}
}

func (w *wizard) configure(names, raw []string) error {
	var weights []float64
	var err error
	if w.tiers {
		weights, err = tierWeights(raw, w.mapping)
	} else {
		weights, err = session.ParseWeights(raw)
	}
	if err != nil {
		return err
	}
	return w.state.Configure(names, weights)
}

func (w *wizard) report(err error) {
	fmt.Fprintf(w.out, "Error: %v\n", err)
}

// huhPrompter asks each step as a huh form.
type huhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

func newHuhPrompter(in io.Reader, out io.Writer) *huhPrompter {
	p := &huhPrompter{in: in, out: out}
	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		p.accessible = true
	}
	return p
}

func (p *huhPrompter) run(groups ...*huh.Group) error {
	return huh.NewForm(groups...).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible).
		Run()
}

func (p *huhPrompter) Welcome(minStrategies, maxStrategies int) (string, int, error) {
	var pair, count string
	err := p.run(huh.NewGroup(
		huh.NewNote().
			Title("Integration strategy evaluation").
			Description("Compare integration strategies for a pair of systems against weighted criteria."),
		huh.NewInput().
			Title("Integration pair").
			Description("The two systems being integrated").
			Placeholder("ERP-CRM").
			Value(&pair),
		huh.NewInput().
			Title("Number of strategies").
			Description(fmt.Sprintf("Enter a number between %d and %d", minStrategies, maxStrategies)).
			Value(&count).
			Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n < minStrategies || n > maxStrategies {
					return fmt.Errorf("enter a number between %d and %d", minStrategies, maxStrategies)
				}
				return nil
			}),
	))
	if err != nil {
		return "", 0, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(count))
	return strings.TrimSpace(pair), n, nil
}

func (p *huhPrompter) Setup(count int, criteria []scoring.Criterion, tiers bool) ([]string, []string, error) {
	names := make([]string, count)
	nameFields := make([]huh.Field, count)
	for i := range names {
		nameFields[i] = huh.NewInput().
			Title(fmt.Sprintf("Strategy %d", i+1)).
			Value(&names[i]).
			Validate(required)
	}

	weights := make([]string, len(criteria))
	weightFields := make([]huh.Field, 0, len(criteria)+1)
	for i, c := range criteria {
		if tiers {
			weights[i] = string(session.TierMedium)
			weightFields = append(weightFields, huh.NewSelect[string]().
				Title(c.Name).
				Description(c.Description).
				Options(
					huh.NewOption("Low", string(session.TierLow)),
					huh.NewOption("Medium", string(session.TierMedium)),
					huh.NewOption("High", string(session.TierHigh)),
				).
				Value(&weights[i]))
			continue
		}
		weightFields = append(weightFields, huh.NewInput().
			Title(c.Name).
			Description(c.Description).
			Placeholder("0.0").
			Value(&weights[i]))
	}
	proceed := true
	weightFields = append(weightFields, huh.NewConfirm().
		Title("Continue to scoring?").
		Affirmative("Continue").
		Negative("Back").
		Value(&proceed))

	err := p.run(
		huh.NewGroup(nameFields...).Title("Strategy names"),
		huh.NewGroup(weightFields...).
			Title("Criteria weights").
			Description("Weights should sum to 1.0; other totals are rescaled."),
	)
	if err != nil {
		return nil, nil, err
	}
	if !proceed {
		return nil, nil, errBack
	}
	return names, weights, nil
}

func (p *huhPrompter) Scores(strategies []string, criteria []scoring.Criterion) ([][]string, error) {
	raw := make([][]string, len(strategies))
	groups := make([]*huh.Group, 0, len(strategies)+1)
	for r, name := range strategies {
		raw[r] = make([]string, len(criteria))
		fields := make([]huh.Field, len(criteria))
		for c, cr := range criteria {
			fields[c] = huh.NewInput().
				Title(cr.Name).
				Description(directionHint(cr)).
				Placeholder("0").
				Value(&raw[r][c])
		}
		groups = append(groups, huh.NewGroup(fields...).Title(name))
	}
	calculate := true
	groups = append(groups, huh.NewGroup(huh.NewConfirm().
		Title("Calculate results?").
		Affirmative("Calculate").
		Negative("Back").
		Value(&calculate)))

	if err := p.run(groups...); err != nil {
		return nil, err
	}
	if !calculate {
		return nil, errBack
	}
	return raw, nil
}

func (p *huhPrompter) Again() (bool, error) {
	again := false
	err := p.run(huh.NewGroup(huh.NewConfirm().
		Title("Evaluate another integration pair?").
		Value(&again)))
	return again, err
}

func directionHint(c scoring.Criterion) string {
	var hint string
	switch c.Direction {
	case scoring.Maximize:
		hint = "higher is better"
	case scoring.Minimize:
		hint = "lower is better"
	default:
		hint = "not ranked by direction"
	}
	if c.Description == "" {
		return hint
	}
	return c.Description + " (" + hint + ")"
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}
