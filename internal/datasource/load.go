package datasource

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/loader"
	"github.com/vanderheijden86/changetree/pkg/model"
)

// maxParallelLoads bounds LoadMany's concurrency.
const maxParallelLoads = 4

// Load detects the source at path and loads it.
func Load(path string, opts loader.Options) (*loader.Document, error) {
	source, err := DetectSource(path)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(source, opts)
}

// LoadFromSource loads a report from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource, opts loader.Options) (*loader.Document, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		report, err := reader.LoadReport()
		if err != nil {
			return nil, err
		}
		if err := report.Validate(); err != nil {
			return nil, fmt.Errorf("%s: invalid report: %w", source.Path, err)
		}
		doc := loader.FromReport(report, opts)
		doc.Source = source.Path
		return doc, nil

	case SourceTypeJSON, SourceTypeYAML:
		return loader.LoadFile(source.Path, opts)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source.Type)
	}
}

// LoadMany loads every path concurrently and merges the results. A single
// path is returned as loaded.
func LoadMany(ctx context.Context, paths []string, opts loader.Options) (*loader.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no report paths given")
	}

	docs := make([]*loader.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Load(path, opts)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(docs) == 1 {
		return docs[0], nil
	}
	return Merge(docs, opts), nil
}

// Merge places each document under its own depth-0 section header, shifting
// its rows one level deeper. Collapse state is carried over.
//
// The added header is an ancestor of every row of its report. With the
// highlight filter on, a report with at least one changed row is therefore
// shown in full, and a report without changes is hidden entirely.
func Merge(docs []*loader.Document, opts loader.Options) *loader.Document {
	var rows []*hierarchy.Row
	titles := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		title := doc.Title()
		titles = append(titles, title)
		sources = append(sources, doc.Source)

		children := doc.Sequence.Rows()
		rows = append(rows, &hierarchy.Row{
			SectionHeader: true,
			Toggleable:    len(children) > 0,
			Label:         title,
			Cells:         []hierarchy.Cell{{Text: title}},
		})
		for i, row := range children {
			shifted := *row
			shifted.Depth = doc.Sequence.Depth(i) + 1
			shifted.Cells = append([]hierarchy.Cell(nil), row.Cells...)
			rows = append(rows, &shifted)
		}
	}

	seq := hierarchy.NewSequence(rows)
	if opts.HighlightColumns != nil {
		seq.SetHighlightColumns(opts.HighlightColumns)
	}
	seq.ApplyCollapsed()

	report := &model.Report{
		Title: strings.Join(titles, " + "),
		Rows:  model.FlatRowsFrom(rows),
	}
	debug.Log("merged %d reports into %d rows", len(docs), seq.Len())
	return &loader.Document{
		Source:   strings.Join(sources, ","),
		Report:   report,
		Sequence: seq,
	}
}
