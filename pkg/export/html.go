package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/model"
)

// IndentPixels is the horizontal offset per depth level in the HTML table.
const IndentPixels = 16

type htmlCell struct {
	Text  string
	Class string
	Link  string
}

type htmlRow struct {
	Depth   int
	Class   string
	Hidden  bool
	Indent  int
	Glyph   string
	Label   string
	Colspan int
	Cells   []htmlCell
}

type htmlPage struct {
	Title      string
	Subtitle   string
	Cutoff     string
	ExportedAt string
	Headers    []string
	Rows       []htmlRow
	Count      int
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 24px; color: #1f2933; }
h1 { margin-bottom: 4px; }
.meta { color: #52606d; margin-bottom: 16px; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #e4e7eb; padding: 6px 8px; text-align: left; vertical-align: top; }
tr.section-header td { background: #f5f7fa; font-weight: 700; }
td.highlight-cell { background: #fff3b0; }
.glyph { display: inline-block; width: 1.2em; color: #7b8794; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{if .Subtitle}}{{.Subtitle}} · {{end}}{{if .Cutoff}}changes since {{.Cutoff}} · {{end}}{{.Count}} rows · exported {{.ExportedAt}}</div>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range $row := .Rows}}
<tr data-depth="{{$row.Depth}}"{{if $row.Class}} class="{{$row.Class}}"{{end}}{{if $row.Hidden}} style="display:none"{{end}}>
{{- if $row.Colspan}}<td colspan="{{$row.Colspan}}"><div style="margin-left:{{$row.Indent}}px"><span class="glyph">{{$row.Glyph}}</span>{{$row.Label}}</div></td>
{{- else}}{{range $i, $c := $row.Cells}}<td{{if $c.Class}} class="{{$c.Class}}"{{end}}>{{if eq $i 0}}<div style="margin-left:{{$row.Indent}}px"><span class="glyph">{{$row.Glyph}}</span>{{if $c.Link}}<a href="{{$c.Link}}">{{$c.Text}}</a>{{else}}{{$c.Text}}{{end}}</div>{{else}}{{$c.Text}}{{end}}</td>{{end}}
{{- end}}</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// WriteHTML renders a static table page. Each row carries data-depth and
// the section-header, parent and collapsed classes; designated cells that
// are marked carry highlight-cell.
func WriteHTML(w io.Writer, seq *hierarchy.Sequence, opts Options) error {
	headers := opts.headers()
	page := htmlPage{
		Title:      opts.title(),
		Subtitle:   opts.Subtitle,
		Cutoff:     opts.Cutoff,
		ExportedAt: opts.exportedAt().Format("2006-01-02 15:04 MST"),
		Headers:    headers,
	}

	for _, i := range selectRows(seq, opts.OnlyVisible) {
		row := seq.Row(i)
		hr := htmlRow{
			Depth:  seq.Depth(i),
			Class:  rowClasses(seq, i),
			Hidden: row.Hidden,
			Indent: seq.Depth(i) * IndentPixels,
			Glyph:  row.Glyph().Symbol(),
			Label:  row.Label,
		}
		if row.SectionHeader {
			hr.Colspan = len(headers)
		} else {
			hr.Cells = htmlCells(seq, i, len(headers), opts.InstanceURL)
		}
		page.Rows = append(page.Rows, hr)
	}
	page.Count = len(page.Rows)

	if err := htmlTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

func rowClasses(seq *hierarchy.Sequence, i int) string {
	row := seq.Row(i)
	var classes []string
	if row.SectionHeader {
		classes = append(classes, "section-header")
	}
	if seq.HasChildren(i) {
		classes = append(classes, "parent")
	}
	if row.Collapsed {
		classes = append(classes, "collapsed")
	}
	return strings.Join(classes, " ")
}

func htmlCells(seq *hierarchy.Sequence, i, width int, instanceURL string) []htmlCell {
	row := seq.Row(i)
	designated := make(map[int]bool)
	for _, c := range seq.HighlightColumns() {
		designated[c] = true
	}

	cells := make([]htmlCell, width)
	for c := range width {
		cells[c].Text = row.CellText(c)
		if designated[c] && row.CellHighlighted(c) {
			cells[c].Class = "highlight-cell"
		}
	}
	if cells[0].Text == "" {
		cells[0].Text = row.Label
	}
	if row.RecordID != "" {
		cells[0].Link = model.RecordURL(instanceURL, row.RecordID)
	}
	return cells
}
