package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/metrics"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [report...]",
		Short: "Summarize a report and time the hierarchy operations on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStats(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func (a *app) runStats(ctx context.Context, w io.Writer, args []string) error {
	doc, paths, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	seq := doc.Sequence

	sections, collapsed, maxDepth := 0, 0, 0
	for _, r := range seq.Forward(0) {
		if r.SectionHeader {
			sections++
		}
		if r.Collapsed {
			collapsed++
		}
		maxDepth = max(maxDepth, r.Depth)
	}

	// One filter round trip exercises the timed paths.
	d := hierarchy.NewDispatcher(seq)
	d.Dispatch(hierarchy.FilterCommand{Active: true})
	included := len(seq.VisibleIndices())
	d.Dispatch(hierarchy.FilterCommand{Active: false})

	fmt.Fprintf(w, "Report:        %s\n", doc.Title())
	fmt.Fprintf(w, "Sources:       %d\n", len(paths))
	fmt.Fprintf(w, "Rows:          %d\n", seq.Len())
	fmt.Fprintf(w, "Sections:      %d\n", sections)
	fmt.Fprintf(w, "Max depth:     %d\n", maxDepth)
	fmt.Fprintf(w, "Collapsed:     %d\n", collapsed)
	fmt.Fprintf(w, "Changed:       %d\n", seq.HighlightedCount())
	fmt.Fprintf(w, "Filter keeps:  %d\n", included)
	if metrics.Enabled() && !a.showMetrics {
		fmt.Fprint(w, "\n", metrics.Report())
	}
	return nil
}
