// Package export renders a row sequence, in its current collapse and filter
// state, to HTML, Markdown, XLSX, SVG or a SQLite snapshot.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/metrics"
)

// Format names an export target.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatXLSX     Format = "xlsx"
	FormatSVG      Format = "svg"
	FormatSQLite   Format = "sqlite"
)

// ErrUnsupportedFormat is returned for unknown format names and for
// formats that cannot be streamed to a writer.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists every export format.
func Formats() []Format {
	return []Format{FormatHTML, FormatMarkdown, FormatXLSX, FormatSVG, FormatSQLite}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "htm":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "svg":
		return FormatSVG, nil
	case "sqlite", "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the format from an output file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %q", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatSQLite {
		return ".db"
	}
	return "." + string(f)
}

// Options describe the exported document.
type Options struct {
	Title       string
	Subtitle    string
	Cutoff      string
	InstanceURL string
	// Headers label the cell columns; DefaultHeaders when empty.
	Headers []string
	// OnlyVisible drops hidden rows. The SQLite snapshot always keeps every
	// row so it can be reloaded with its collapse state intact.
	OnlyVisible bool
	// ExportedAt stamps the document; time.Now when zero.
	ExportedAt time.Time
}

// DefaultHeaders match the three cells of a content row.
var DefaultHeaders = []string{"Item", "Created", "Last Modified"}

// DefaultOptions exports only what is currently shown.
func DefaultOptions() Options {
	return Options{OnlyVisible: true}
}

func (o Options) headers() []string {
	if len(o.Headers) > 0 {
		return o.Headers
	}
	return DefaultHeaders
}

func (o Options) exportedAt() time.Time {
	if o.ExportedAt.IsZero() {
		return time.Now().UTC()
	}
	return o.ExportedAt.UTC()
}

func (o Options) title() string {
	if o.Title == "" {
		return "Catalog Changes"
	}
	return o.Title
}

// selectRows returns the indices to render.
func selectRows(seq *hierarchy.Sequence, onlyVisible bool) []int {
	if onlyVisible {
		return seq.VisibleIndices()
	}
	out := make([]int, seq.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// Write streams seq to w. SQLite needs a file path; use ToFile.
func Write(w io.Writer, seq *hierarchy.Sequence, format Format, opts Options) error {
	defer metrics.Timer(metrics.Export)()

	switch format {
	case FormatHTML:
		return WriteHTML(w, seq, opts)
	case FormatMarkdown:
		return WriteMarkdown(w, seq, opts)
	case FormatXLSX:
		return WriteXLSX(w, seq, opts)
	case FormatSVG:
		return WriteSVG(w, seq, opts)
	default:
		return fmt.Errorf("%w: %q cannot be streamed", ErrUnsupportedFormat, format)
	}
}

// ToFile writes seq to path, creating parent directories as needed.
func ToFile(seq *hierarchy.Sequence, format Format, path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	debug.Log("export: %s -> %s (%d rows, only visible=%v)", format, path, seq.Len(), opts.OnlyVisible)

	if format == FormatSQLite {
		defer metrics.Timer(metrics.Export)()
		_, err := WriteSQLite(path, seq, opts)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, seq, format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
