package hierarchy

import "iter"

// DefaultHighlightColumns are the cells consulted by the highlighted
// predicate: the created and last-modified timestamp columns.
var DefaultHighlightColumns = []int{1, 2}

// Sequence is the ordered row list of one rendered table. The order itself
// encodes the tree; see the package documentation.
//
// A Sequence is owned by a single event loop and is not safe for concurrent
// use. A nil *Sequence behaves as an empty table.
type Sequence struct {
	rows             []*Row
	highlightColumns []int
	minCells         int
}

// NewSequence wraps rows in a Sequence using DefaultHighlightColumns.
// Nil rows are dropped.
func NewSequence(rows []*Row) *Sequence {
	s := &Sequence{}
	for _, r := range rows {
		if r != nil {
			s.rows = append(s.rows, r)
		}
	}
	s.SetHighlightColumns(DefaultHighlightColumns)
	return s
}

// SetHighlightColumns changes the designated highlight cells. A row with
// fewer cells than the highest designated column + 1 is never highlighted.
func (s *Sequence) SetHighlightColumns(cols []int) {
	if s == nil {
		return
	}
	s.highlightColumns = s.highlightColumns[:0]
	s.minCells = 0
	for _, c := range cols {
		if c < 0 {
			continue
		}
		s.highlightColumns = append(s.highlightColumns, c)
		if c+1 > s.minCells {
			s.minCells = c + 1
		}
	}
}

// HighlightColumns returns a copy of the designated highlight cells.
func (s *Sequence) HighlightColumns() []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s.highlightColumns...)
}

// Len returns the number of rows.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Rows returns the underlying rows in order. The slice is shared.
func (s *Sequence) Rows() []*Row {
	if s == nil {
		return nil
	}
	return s.rows
}

// Row returns the row at index i, or nil when i is out of range.
func (s *Sequence) Row(i int) *Row {
	if s == nil || i < 0 || i >= len(s.rows) {
		return nil
	}
	return s.rows[i]
}

// Depth returns the depth of row i. Out-of-range indices and negative
// depths read as 0.
func (s *Sequence) Depth(i int) int {
	r := s.Row(i)
	if r == nil || r.Depth < 0 {
		return 0
	}
	return r.Depth
}

// IndexOf returns the position of row r, or -1 when r is not part of the
// sequence.
func (s *Sequence) IndexOf(r *Row) int {
	if s == nil || r == nil {
		return -1
	}
	for i, row := range s.rows {
		if row == r {
			return i
		}
	}
	return -1
}

// Forward iterates rows from index i (inclusive) to the end.
func (s *Sequence) Forward(i int) iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		if s == nil {
			return
		}
		if i < 0 {
			i = 0
		}
		for k := i; k < len(s.rows); k++ {
			if !yield(k, s.rows[k]) {
				return
			}
		}
	}
}

// Backward iterates rows from index i (inclusive) down to the first row.
func (s *Sequence) Backward(i int) iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		if s == nil {
			return
		}
		if i >= len(s.rows) {
			i = len(s.rows) - 1
		}
		for k := i; k >= 0; k-- {
			if !yield(k, s.rows[k]) {
				return
			}
		}
	}
}

// DescendantEnd returns the exclusive end index of row i's descendant block.
// The block is empty when DescendantEnd(i) == i+1.
func (s *Sequence) DescendantEnd(i int) int {
	if s.Row(i) == nil {
		return i + 1
	}
	d := s.Depth(i)
	k := i + 1
	for k < len(s.rows) && s.Depth(k) > d {
		k++
	}
	return k
}

// HasChildren reports whether row i has a non-empty descendant block.
func (s *Sequence) HasChildren(i int) bool {
	return s.DescendantEnd(i) > i+1
}

// IsHighlighted reports whether row i is a changed item. Section headers are
// never highlighted, and rows lacking the designated cells are treated as
// not highlighted.
func (s *Sequence) IsHighlighted(i int) bool {
	r := s.Row(i)
	if r == nil || r.SectionHeader || len(r.Cells) < s.minCells {
		return false
	}
	for _, c := range s.highlightColumns {
		if r.Cells[c].Highlight {
			return true
		}
	}
	return false
}

// SetHidden sets the display toggle of row i.
func (s *Sequence) SetHidden(i int, hidden bool) {
	if r := s.Row(i); r != nil {
		r.Hidden = hidden
	}
}

// SetCollapsed sets the collapsed flag of row i. The glyph follows the flag.
func (s *Sequence) SetCollapsed(i int, collapsed bool) {
	if r := s.Row(i); r != nil {
		r.Collapsed = collapsed
	}
}

// VisibleIndices returns the indices of rows that currently render.
func (s *Sequence) VisibleIndices() []int {
	var out []int
	for i, r := range s.Forward(0) {
		if !r.Hidden {
			out = append(out, i)
		}
	}
	return out
}

// HighlightedCount returns the number of highlighted rows.
func (s *Sequence) HighlightedCount() int {
	n := 0
	for i := range s.Len() {
		if s.IsHighlighted(i) {
			n++
		}
	}
	return n
}

// ApplyCollapsed hides the descendant block of every collapsed row, the way
// a renderer emitting collapsed markup would. Rows outside collapsed blocks
// are revealed.
func (s *Sequence) ApplyCollapsed() {
	n := s.Len()
	for i := 0; i < n; {
		s.SetHidden(i, false)
		if s.rows[i].Collapsed {
			end := s.DescendantEnd(i)
			for k := i + 1; k < end; k++ {
				s.SetHidden(k, true)
			}
			i = end
			continue
		}
		i++
	}
}
