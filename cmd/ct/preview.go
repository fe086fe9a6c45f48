package main

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/changetree/pkg/export"
)

const defaultPreviewWidth = 100

func newPreviewCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "preview [report...]",
		Short: "Render the Markdown export in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreview(cmd.Context(), cmd.OutOrStdout(), args, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the Markdown source instead of rendering it")
	return cmd
}

func (a *app) runPreview(ctx context.Context, w io.Writer, args []string, raw bool) error {
	doc, _, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	a.applyInitialState(doc.Sequence, -1)

	var md bytes.Buffer
	if err := export.WriteMarkdown(&md, doc.Sequence, exportOptions(doc, exportFlags{})); err != nil {
		return err
	}
	if raw {
		_, err := w.Write(md.Bytes())
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		previewStyle(),
		glamour.WithWordWrap(previewWidth()),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func previewStyle() glamour.TermRendererOption {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle("notty")
}

func previewWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultPreviewWidth
}
