// Package loader decodes catalog change reports from JSON or YAML and builds
// the row sequence the viewer and exporters operate on.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/metrics"
	"github.com/vanderheijden86/changetree/pkg/model"
)

// Format identifies a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Options control how a report becomes a row sequence.
type Options struct {
	// Cutoff overrides the report's own cutoff for node trees.
	Cutoff time.Time
	// HighlightColumns overrides hierarchy.DefaultHighlightColumns.
	HighlightColumns []int
}

// Document is a loaded report together with its row sequence.
type Document struct {
	Source   string
	Report   *model.Report
	Sequence *hierarchy.Sequence
}

// Title returns the report title, falling back to the source file name.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	if d.Report != nil && d.Report.Title != "" {
		return d.Report.Title
	}
	return filepath.Base(d.Source)
}

// LoadFile reads and decodes the report at path.
func LoadFile(path string, opts Options) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// Decode reads one report from r.
func Decode(r io.Reader, format Format, opts Options) (*Document, error) {
	defer metrics.Timer(metrics.ReportLoad)()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var report model.Report
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&report); err != nil {
			return nil, fmt.Errorf("parsing JSON report: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("parsing YAML report: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	return FromReport(&report, opts), nil
}

// FromReport builds the row sequence of an already-decoded report. Rows
// that start collapsed have their descendant blocks hidden.
func FromReport(report *model.Report, opts Options) *Document {
	seq := hierarchy.NewSequence(report.BuildRows(opts.Cutoff))
	if opts.HighlightColumns != nil {
		seq.SetHighlightColumns(opts.HighlightColumns)
	}
	seq.ApplyCollapsed()
	debug.Log("loaded report %q: %d rows, %d highlighted", report.Title, seq.Len(), seq.HighlightedCount())
	return &Document{Report: report, Sequence: seq}
}

// Encode writes report in the given format.
func Encode(w io.Writer, report *model.Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
