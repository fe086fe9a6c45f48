package hierarchy

// Toggle flips the collapsed state of row r. Rows that are not part of the
// sequence are ignored.
func (s *Sequence) Toggle(r *Row) {
	s.ToggleAt(s.IndexOf(r))
}

// ToggleAt flips the collapsed state of row i and updates the display of its
// descendant block.
//
// Collapsing hides the whole block. Expanding reveals it again, except for
// the descendants of rows that are themselves collapsed: their subtrees stay
// hidden, so nested collapse state survives a collapse/expand of an ancestor.
func (s *Sequence) ToggleAt(i int) {
	r := s.Row(i)
	if r == nil {
		return
	}
	r.Collapsed = !r.Collapsed
	end := s.DescendantEnd(i)

	if r.Collapsed {
		for k := i + 1; k < end; k++ {
			s.rows[k].Hidden = true
		}
		return
	}

	// suppress >= 0 is the depth of the collapsed row whose subtree is being
	// skipped.
	suppress := -1
	for k := i + 1; k < end; k++ {
		d := s.Depth(k)
		if suppress >= 0 {
			if d > suppress {
				continue
			}
			suppress = -1
		}
		s.rows[k].Hidden = false
		if s.rows[k].Collapsed {
			suppress = d
		}
	}
}
