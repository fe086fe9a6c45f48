package model

import (
	"fmt"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// Node is one entry of a nested report. A node with a Section title renders
// as a section header; otherwise it renders the Record.
type Node struct {
	Section   string  `json:"section,omitempty" yaml:"section,omitempty"`
	Entity    string  `json:"entity,omitempty" yaml:"entity,omitempty"`
	Record    *Record `json:"record,omitempty" yaml:"record,omitempty"`
	Collapsed bool    `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Children  []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsSection reports whether the node renders as a section header.
func (n *Node) IsSection() bool {
	return n != nil && n.Section != ""
}

// Label is the text shown for the node.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	if n.Section != "" {
		return n.Section
	}
	if n.Record != nil && n.Record.Name != "" {
		if n.Entity != "" {
			return fmt.Sprintf("%s: %s", n.Entity, n.Record.Name)
		}
		return n.Record.Name
	}
	if n.Entity != "" {
		return n.Entity
	}
	if n.Record != nil {
		return n.Record.ID
	}
	return ""
}

// Flatten emits the nodes depth-first as table rows, starting at depth 0.
// Content rows get three cells (label, created, modified) with highlight
// markers from policy; section headers get a single cell. A row carries a
// toggle affordance when its node has children.
func Flatten(nodes []*Node, policy HighlightPolicy) []*hierarchy.Row {
	var rows []*hierarchy.Row
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil {
			return
		}
		rows = append(rows, nodeRow(n, depth, policy))
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
	return rows
}

func nodeRow(n *Node, depth int, policy HighlightPolicy) *hierarchy.Row {
	row := &hierarchy.Row{
		Depth:      depth,
		Collapsed:  n.Collapsed,
		Label:      n.Label(),
		Toggleable: len(n.Children) > 0,
	}
	if n.IsSection() {
		row.SectionHeader = true
		row.Cells = []hierarchy.Cell{{Text: n.Section}}
		return row
	}
	rec := n.Record
	if rec == nil {
		rec = &Record{}
	}
	created, modified := policy.Classes(rec)
	row.RecordID = rec.ID
	row.Cells = []hierarchy.Cell{
		{Text: row.Label},
		{Text: rec.CreatedDate, Highlight: created},
		{Text: rec.LastModifiedDate, Highlight: modified},
	}
	return row
}

// CountNodes returns the number of nodes in the forest.
func CountNodes(nodes []*Node) int {
	n := 0
	for _, node := range nodes {
		if node == nil {
			continue
		}
		n += 1 + CountNodes(node.Children)
	}
	return n
}
