// Package testutil provides deterministic row-sequence fixtures and
// assertion helpers for hierarchy tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// Parse builds a sequence from a compact text description, one row per line:
//
//	<indent><kind><label>
//
// Indentation is two spaces per depth level. kind is one of:
//
//	#  section header
//	*  highlighted content row
//	-  plain content row
//
// A trailing " [c]" marks the row as collapsed. Empty lines are ignored.
//
//	#Products
//	  -Bundle
//	    *Changed attribute
//	    -Untouched attribute
func Parse(outline string) *hierarchy.Sequence {
	var rows []*hierarchy.Row
	for _, line := range strings.Split(outline, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		depth := (len(line) - len(trimmed)) / 2
		collapsed := strings.HasSuffix(trimmed, " [c]")
		trimmed = strings.TrimSuffix(trimmed, " [c]")

		kind, label := trimmed[:1], trimmed[1:]
		switch kind {
		case "#":
			rows = append(rows, SectionRow(depth, label))
		case "*":
			rows = append(rows, ContentRow(depth, label, true))
		default:
			rows = append(rows, ContentRow(depth, label, false))
		}
		rows[len(rows)-1].Collapsed = collapsed
	}
	markToggleable(rows)
	seq := hierarchy.NewSequence(rows)
	seq.ApplyCollapsed()
	return seq
}

// SectionRow builds a section header row.
func SectionRow(depth int, label string) *hierarchy.Row {
	return &hierarchy.Row{
		Depth:         depth,
		SectionHeader: true,
		Label:         label,
		Cells:         []hierarchy.Cell{{Text: label}},
	}
}

// ContentRow builds a content row with entity, created and modified cells.
// When changed is true the modified cell carries a highlight marker.
func ContentRow(depth int, label string, changed bool) *hierarchy.Row {
	return &hierarchy.Row{
		Depth:    depth,
		Label:    label,
		RecordID: "rec-" + strings.ReplaceAll(strings.ToLower(label), " ", "-"),
		Cells: []hierarchy.Cell{
			{Text: label},
			{Text: "2024-01-01T00:00:00Z"},
			{Text: "2024-06-01T00:00:00Z", Highlight: changed},
		},
	}
}

func markToggleable(rows []*hierarchy.Row) {
	for i, r := range rows {
		r.Toggleable = i+1 < len(rows) && rows[i+1].Depth > r.Depth
	}
}

// GeneratorConfig controls random sequence generation.
type GeneratorConfig struct {
	Seed          int64   // Random seed for determinism
	Rows          int     // Number of rows
	MaxDepth      int     // Deepest nesting level
	SectionRatio  float64 // Share of rows that are section headers
	HighlightRate float64 // Share of content rows that are highlighted
	CollapseRate  float64 // Share of parent rows starting collapsed
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		Rows:          60,
		MaxDepth:      5,
		SectionRatio:  0.2,
		HighlightRate: 0.1,
		CollapseRate:  0.2,
	}
}

// Generate builds a structurally valid sequence: the first row has depth 0
// and each row is at most one level deeper than its predecessor.
func Generate(cfg GeneratorConfig) *hierarchy.Sequence {
	rng := rand.New(rand.NewSource(cfg.Seed))
	rows := make([]*hierarchy.Row, 0, cfg.Rows)
	depth := 0
	for i := 0; i < cfg.Rows; i++ {
		if i > 0 {
			depth = rng.Intn(depth+2) // 0..prev+1
			if depth > cfg.MaxDepth {
				depth = cfg.MaxDepth
			}
		}
		label := fmt.Sprintf("row-%03d", i)
		if rng.Float64() < cfg.SectionRatio {
			rows = append(rows, SectionRow(depth, label))
		} else {
			rows = append(rows, ContentRow(depth, label, rng.Float64() < cfg.HighlightRate))
		}
	}
	markToggleable(rows)
	for _, r := range rows {
		if r.Toggleable && rng.Float64() < cfg.CollapseRate {
			r.Collapsed = true
		}
	}
	seq := hierarchy.NewSequence(rows)
	seq.ApplyCollapsed()
	return seq
}
