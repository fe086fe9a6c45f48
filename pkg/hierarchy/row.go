// Package hierarchy holds the visibility state of a collapsible, filterable
// hierarchical table.
//
// The table is a flat, ordered sequence of rows. Each row carries its nesting
// depth; parent/child relationships are never stored and are derived from
// contiguous runs instead: the descendant block of a row at depth d is the
// maximal run of immediately-following rows whose depth is greater than d.
//
// Two operations mutate the sequence in place:
//
//   - Toggle / ToggleAt collapses or expands one row, preserving the collapsed
//     state of nested subtrees.
//   - ApplyHighlightFilter restricts the visible rows to highlighted rows and
//     the context needed to read them, or reveals every row again.
//
// Neither operation returns errors. Missing data falls back to safe defaults
// and operations on a nil or empty sequence do nothing.
package hierarchy

import (
	"strconv"
	"strings"
)

// Glyph is the toggle affordance shown next to a row.
type Glyph string

const (
	// GlyphExpanded is shown on an expanded row ("collapse available").
	GlyphExpanded Glyph = "expand_more"
	// GlyphCollapsed is shown on a collapsed row ("expand available").
	GlyphCollapsed Glyph = "chevron_right"
	// GlyphLeaf is shown on rows without a toggle affordance.
	GlyphLeaf Glyph = "radio_button_unchecked"
)

// Symbol returns a terminal-friendly rendering of the glyph.
func (g Glyph) Symbol() string {
	switch g {
	case GlyphExpanded:
		return "▾"
	case GlyphCollapsed:
		return "▸"
	default:
		return "•"
	}
}

// Cell is one table cell of a row.
type Cell struct {
	Text      string `json:"text" yaml:"text"`
	Highlight bool   `json:"highlight,omitempty" yaml:"highlight,omitempty"`
}

// Row is one rendering unit of the hierarchical table.
type Row struct {
	Depth         int    // Nesting level (0 = root)
	Collapsed     bool   // Descendant block suppressed by the user
	Hidden        bool   // Display toggle; a row renders when !Hidden
	SectionHeader bool   // Structural grouping header, never a filter seed
	Toggleable    bool   // Carries a toggle affordance
	Label         string // Display label (entity, section title)
	RecordID      string // Identifier of the underlying record, if any
	Cells         []Cell // Table cells; highlight markers live here
}

// Visible reports whether the row currently renders.
func (r *Row) Visible() bool {
	return r != nil && !r.Hidden
}

// Glyph returns the affordance glyph matching the row's collapsed flag.
func (r *Row) Glyph() Glyph {
	if r == nil || !r.Toggleable {
		return GlyphLeaf
	}
	if r.Collapsed {
		return GlyphCollapsed
	}
	return GlyphExpanded
}

// CellText returns the text of cell i, or "" when the row has no such cell.
func (r *Row) CellText(i int) string {
	if r == nil || i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i].Text
}

// CellHighlighted reports whether cell i carries a highlight marker.
func (r *Row) CellHighlighted(i int) bool {
	if r == nil || i < 0 || i >= len(r.Cells) {
		return false
	}
	return r.Cells[i].Highlight
}

// ParseDepth converts renderer depth data to a depth value.
// Missing, malformed or negative values yield 0.
func ParseDepth(s string) int {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return 0
	}
	return d
}
