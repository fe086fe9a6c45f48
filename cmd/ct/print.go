package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

func newPrintCmd(a *app) *cobra.Command {
	var collapseDepth int
	cmd := &cobra.Command{
		Use:   "print [report...]",
		Short: "Print the visible rows as an indented outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrint(cmd.Context(), cmd.OutOrStdout(), args, collapseDepth)
		},
	}
	cmd.Flags().IntVar(&collapseDepth, "collapse-depth", -1, "Collapse every row at this depth or deeper")
	return cmd
}

func (a *app) runPrint(ctx context.Context, w io.Writer, args []string, collapseDepth int) error {
	doc, _, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	seq := doc.Sequence
	a.applyInitialState(seq, collapseDepth)

	indent := a.cfg.UI.IndentWidth
	if indent <= 0 {
		indent = 2
	}
	for _, i := range seq.VisibleIndices() {
		if err := writeLine(w, "%s", printLine(seq, i, indent)); err != nil {
			return err
		}
	}
	return nil
}

// printLine renders one row: indentation, glyph, label and, for content
// rows, the remaining cells. Designated cells with a marker end in "*".
func printLine(seq *hierarchy.Sequence, i, indent int) string {
	r := seq.Row(i)
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", r.Depth*indent))
	sb.WriteString(r.Glyph().Symbol())
	sb.WriteString(" ")
	sb.WriteString(r.Label)
	if r.SectionHeader {
		return sb.String()
	}

	designated := make(map[int]bool)
	for _, c := range seq.HighlightColumns() {
		designated[c] = true
	}
	for c := 1; c < len(r.Cells); c++ {
		text := r.CellText(c)
		if text == "" {
			continue
		}
		sb.WriteString("  ")
		sb.WriteString(text)
		if designated[c] && r.CellHighlighted(c) {
			sb.WriteString("*")
		}
	}
	return sb.String()
}
