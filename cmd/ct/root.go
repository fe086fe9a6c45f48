package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/changetree/internal/datasource"
	"github.com/vanderheijden86/changetree/pkg/config"
	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/loader"
	"github.com/vanderheijden86/changetree/pkg/metrics"
	"github.com/vanderheijden86/changetree/pkg/recipe"
	"github.com/vanderheijden86/changetree/pkg/version"
)

// app holds the state shared by all subcommands.
type app struct {
	cfg config.Config

	configPath      string
	cutoff          string
	recipeName      string
	onlyHighlighted bool
	showMetrics     bool
	debug           bool

	// recipe is the preset selected with --recipe, if any.
	recipe *recipe.Recipe

	// now is replaced in tests.
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "ct [report...]",
		Short: "Browse catalog change reports as a collapsible hierarchy",
		Long: `ct loads catalog change reports (JSON, YAML or SQLite snapshots) and shows
them as an indented table. Rows changed since the cutoff are highlighted and
can be filtered down to, together with their ancestors and sections.

Without a subcommand ct opens the viewer when attached to a terminal and
prints the visible rows otherwise.`,
		Version:           version.Version,
		SilenceUsage:      true,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.finish,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(a.cfg.Reports) == 0 {
				return cmd.Help()
			}
			if isTerminal() {
				return a.runView(cmd.Context(), args)
			}
			return a.runPrint(cmd.Context(), cmd.OutOrStdout(), args, -1)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ct/config.yaml)")
	flags.StringVar(&a.cutoff, "cutoff", "", "Highlight rows changed at or after this time (14d, 2w, 1m, 1y, YYYY-MM-DD or RFC3339)")
	flags.StringVar(&a.recipeName, "recipe", "", "Start from a named view preset (see ct recipes)")
	flags.BoolVar(&a.onlyHighlighted, "only-highlighted", false, "Start with only changed rows shown")
	flags.BoolVar(&a.showMetrics, "metrics", false, "Print timing metrics on exit")
	flags.BoolVar(&a.debug, "debug", false, "Write debug logs to stderr")

	root.AddCommand(
		newViewCmd(a),
		newPrintCmd(a),
		newExportCmd(a),
		newPreviewCmd(a),
		newSnapshotsCmd(a),
		newStatsCmd(a),
		newRecipesCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads the config and validates the common flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.debug {
		debug.SetEnabled(true)
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if _, err := recipe.ParseRelativeTime(a.cutoff, a.now()); err != nil {
		return fmt.Errorf("invalid --cutoff: %w", err)
	}
	if a.recipeName != "" {
		if err := a.selectRecipe(a.recipeName); err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("only-highlighted") {
		a.onlyHighlighted = a.cfg.UI.OnlyHighlighted
		if a.recipe != nil {
			a.onlyHighlighted = a.recipe.OnlyHighlighted
		}
	}
	debug.Log("config loaded: %d named reports, cutoff flag %q", len(a.cfg.Reports), a.cutoff)
	return nil
}

func (a *app) finish(cmd *cobra.Command, _ []string) {
	if a.showMetrics {
		fmt.Fprint(cmd.ErrOrStderr(), metrics.Report())
	}
}

// selectRecipe looks up a recipe from the builtin, user and project sources.
func (a *app) selectRecipe(name string) error {
	l, err := recipe.LoadDefault()
	if err != nil {
		return err
	}
	for _, w := range l.Warnings() {
		debug.Log("recipes: %s", w)
	}
	r := l.Get(name)
	if r == nil {
		return fmt.Errorf("unknown recipe %q (available: %s)", name, strings.Join(l.Names(), ", "))
	}
	if _, err := r.Cutoff(a.now()); err != nil {
		return fmt.Errorf("recipe %q: %w", name, err)
	}
	debug.Log("recipe %s from %s", name, l.Source(name))
	a.recipe = r
	return nil
}

// loadOptions resolves the cutoff: --cutoff, then the recipe, then the
// config, then the report's own cutoff (zero).
func (a *app) loadOptions() loader.Options {
	now := a.now().UTC()
	opts := loader.Options{HighlightColumns: a.cfg.Highlight.Columns}
	if a.recipe != nil && len(a.recipe.Columns) > 0 {
		opts.HighlightColumns = a.recipe.Columns
	}

	if t, err := recipe.ParseRelativeTime(a.cutoff, now); err == nil && !t.IsZero() {
		opts.Cutoff = t
		return opts
	}
	if t, err := a.recipe.Cutoff(now); err == nil && !t.IsZero() {
		opts.Cutoff = t
		return opts
	}
	opts.Cutoff = a.cfg.CutoffTime(now)
	return opts
}

// reportPaths maps named reports to paths. With no arguments every
// configured report is used.
func (a *app) reportPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		for _, r := range a.cfg.Reports {
			args = append(args, r.ResolvedPath())
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("no report given and none configured")
		}
		return args, nil
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		paths[i] = a.cfg.ResolveReport(arg)
	}
	return paths, nil
}

func (a *app) load(ctx context.Context, args []string) (*loader.Document, []string, error) {
	paths, err := a.reportPaths(args)
	if err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := datasource.LoadMany(ctx, paths, a.loadOptions())
	if err != nil {
		return nil, nil, err
	}
	return doc, paths, nil
}

// applyInitialState collapses rows, then applies the highlight filter when
// requested.
func (a *app) applyInitialState(seq *hierarchy.Sequence, collapseDepth int) *hierarchy.Dispatcher {
	d := a.collapseRows(seq, collapseDepth)
	if a.onlyHighlighted {
		d.Dispatch(hierarchy.FilterCommand{Active: true})
	}
	return d
}

// collapseRows collapses every toggleable row at collapseDepth or deeper. A
// negative depth falls back to the recipe's, and without one the loaded
// state is left alone.
func (a *app) collapseRows(seq *hierarchy.Sequence, collapseDepth int) *hierarchy.Dispatcher {
	if collapseDepth < 0 && a.recipe != nil && a.recipe.CollapseDepth != nil {
		collapseDepth = *a.recipe.CollapseDepth
	}
	d := hierarchy.NewDispatcher(seq)
	if collapseDepth >= 0 {
		for i, r := range seq.Forward(0) {
			if r.Toggleable && !r.Collapsed && r.Depth >= collapseDepth {
				d.Dispatch(hierarchy.ToggleCommand{Index: i})
			}
		}
	}
	return d
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ct %s\n", version.Version)
		},
	}
}

// writeLine is a small helper so subcommands share error handling for
// plain output.
func writeLine(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format+"\n", args...)
	return err
}
