package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// SVG layout, in pixels.
const (
	svgLineHeight  = 22
	svgMargin      = 24
	svgHeaderH     = 64
	svgIndent      = 18
	svgCharWidth   = 8
	svgMinWidth    = 480
	svgColumnGap   = 24
	svgMaxLabelLen = 60
)

// SVG palette.
const (
	svgBackground = "#ffffff"
	svgText       = "#1f2933"
	svgSubtle     = "#7b8794"
	svgSection    = "#f5f7fa"
	svgHighlight  = "#fff3b0"
	svgAccent     = "#b7791f"
)

// WriteSVG draws the outline as one text line per row, indented by depth.
// Highlighted rows get a tinted band and accent text.
func WriteSVG(w io.Writer, seq *hierarchy.Sequence, opts Options) error {
	indices := selectRows(seq, opts.OnlyVisible)

	labelCols, extraCols := 0, 0
	for _, i := range indices {
		row := seq.Row(i)
		labelCols = max(labelCols, seq.Depth(i)*svgIndent/svgCharWidth+2+len([]rune(truncate(row.Label, svgMaxLabelLen))))
		extra := 0
		for c := 1; c < len(row.Cells); c++ {
			extra += len([]rune(row.CellText(c))) + 2
		}
		extraCols = max(extraCols, extra)
	}
	width := max(svgMinWidth, 2*svgMargin+(labelCols+extraCols)*svgCharWidth+svgColumnGap)
	height := svgHeaderH + len(indices)*svgLineHeight + svgMargin

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+svgBackground)
	canvas.Text(svgMargin, 32, opts.title(),
		fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;font-weight:bold", svgText))
	canvas.Text(svgMargin, 52, svgSummary(seq, opts, len(indices)),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", svgSubtle))

	detailX := svgMargin + labelCols*svgCharWidth + svgColumnGap
	for n, i := range indices {
		row := seq.Row(i)
		top := svgHeaderH + n*svgLineHeight
		baseline := top + svgLineHeight - 6

		switch {
		case row.SectionHeader:
			canvas.Rect(0, top, width, svgLineHeight, "fill:"+svgSection)
		case seq.IsHighlighted(i):
			canvas.Rect(0, top, width, svgLineHeight, "fill:"+svgHighlight)
		}

		color, weight := svgText, "normal"
		if row.SectionHeader {
			weight = "bold"
		} else if seq.IsHighlighted(i) {
			color = svgAccent
		}
		x := svgMargin + seq.Depth(i)*svgIndent
		canvas.Text(x, baseline, row.Glyph().Symbol()+" "+truncate(row.Label, svgMaxLabelLen),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:%s", color, weight))

		dx := detailX
		for c := 1; c < len(row.Cells); c++ {
			text := row.CellText(c)
			if text == "" {
				continue
			}
			style := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", svgSubtle)
			if row.CellHighlighted(c) {
				style = fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;font-weight:bold", svgAccent)
			}
			canvas.Text(dx, baseline, text, style)
			dx += (len([]rune(text)) + 2) * svgCharWidth
		}
	}

	canvas.End()
	return nil
}

func svgSummary(seq *hierarchy.Sequence, opts Options, shown int) string {
	s := fmt.Sprintf("%d of %d rows · %d highlighted", shown, seq.Len(), seq.HighlightedCount())
	if opts.Cutoff != "" {
		s += " · since " + opts.Cutoff
	}
	return s
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
