package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/pkg/export"
	"github.com/vanderheijden86/changetree/pkg/hooks"
	"github.com/vanderheijden86/changetree/pkg/loader"
)

type exportFlags struct {
	format        string
	output        string
	title         string
	all           bool
	wizard        bool
	noHooks       bool
	collapseDepth int
}

func newExportCmd(a *app) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export [report...]",
		Short: "Export the visible rows to HTML, Markdown, XLSX, SVG or SQLite",
		Long: `Export the report with its current collapse and filter state.

The format comes from --format, then from the --output extension, then from
the configured default. "-o -" writes to stdout (not for sqlite).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd.Context(), cmd.OutOrStdout(), args, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "", "Output format: html, md, xlsx, svg, sqlite")
	flags.StringVarP(&f.output, "output", "o", "", "Output path (default: <output_dir>/<title>.<ext>)")
	flags.StringVar(&f.title, "title", "", "Document title (default: report title)")
	flags.BoolVar(&f.all, "all", false, "Include hidden rows")
	flags.BoolVar(&f.wizard, "wizard", false, "Choose the export settings interactively")
	flags.BoolVar(&f.noHooks, "no-hooks", false, "Skip the hooks in "+hooks.ConfigFile)
	flags.IntVar(&f.collapseDepth, "collapse-depth", -1, "Collapse every row at this depth or deeper")
	return cmd
}

func (a *app) runExport(ctx context.Context, stdout io.Writer, args []string, f exportFlags) error {
	doc, _, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	a.applyInitialState(doc.Sequence, f.collapseDepth)

	format, err := a.resolveFormat(f)
	if err != nil {
		return err
	}
	opts := exportOptions(doc, f)
	path := f.output

	if f.wizard {
		wiz := export.NewWizard(export.WizardConfig{
			Format:      format,
			Path:        path,
			Title:       opts.Title,
			OnlyVisible: opts.OnlyVisible,
		}, a.cfg.OutputDir())
		answers, err := wiz.Run()
		if err != nil {
			return fmt.Errorf("export wizard: %w", err)
		}
		format, path = answers.Format, answers.Path
		opts.OnlyVisible = answers.OnlyVisible
		if answers.Title != "" {
			opts.Title = answers.Title
		}
	}

	if path == "" {
		path = export.DefaultOutputPath(a.cfg.OutputDir(), opts.Title, format)
	}

	projectDir, _ := os.Getwd()
	executor, err := hooks.RunHooks(projectDir, hookContext(doc, format, path, opts), f.noHooks)
	if err != nil {
		return err
	}
	if executor != nil {
		defer func() {
			if summary := executor.Summary(); summary != "" {
				fmt.Fprint(os.Stderr, summary)
			}
		}()
		if err := executor.RunPreExport(); err != nil {
			return fmt.Errorf("export cancelled: %w", err)
		}
	}

	if path == "-" {
		err = export.Write(stdout, doc.Sequence, format, opts)
	} else {
		err = export.ToFile(doc.Sequence, format, path, opts)
	}
	if err != nil {
		return err
	}
	if executor != nil {
		if err := executor.RunPostExport(); err != nil {
			return err
		}
	}
	if path == "-" {
		return nil
	}
	return writeLine(stdout, "Exported %s to %s", format, path)
}

func hookContext(doc *loader.Document, format export.Format, path string, opts export.Options) hooks.ExportContext {
	seq := doc.Sequence
	rows := seq.Len()
	if opts.OnlyVisible && format != export.FormatSQLite {
		rows = len(seq.VisibleIndices())
	}
	return hooks.ExportContext{
		ExportPath:       path,
		ExportFormat:     string(format),
		RowCount:         rows,
		HighlightedCount: seq.HighlightedCount(),
		Timestamp:        time.Now(),
	}
}

func (a *app) resolveFormat(f exportFlags) (export.Format, error) {
	switch {
	case f.format != "":
		return export.ParseFormat(f.format)
	case f.output != "" && f.output != "-":
		if format, err := export.FormatFromPath(f.output); err == nil {
			return format, nil
		}
	}
	return export.ParseFormat(a.cfg.Export.DefaultFormat)
}

func exportOptions(doc *loader.Document, f exportFlags) export.Options {
	opts := export.DefaultOptions()
	opts.Title = doc.Title()
	if f.title != "" {
		opts.Title = f.title
	}
	if r := doc.Report; r != nil {
		opts.Subtitle = r.Subtitle
		opts.Cutoff = r.Cutoff
		opts.InstanceURL = r.InstanceURL
	}
	opts.OnlyVisible = !f.all
	return opts
}
