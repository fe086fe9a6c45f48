package hierarchy

// ApplyHighlightFilter recomputes the visible rows from scratch.
//
// When active is false every row is revealed; collapse flags are left as they
// are and take effect again on the next toggle. When active is true only the
// include set (see IncludeSet) stays visible, and included rows that are
// collapsed are expanded so the filter result is never contradicted by a
// stale collapse flag.
func (s *Sequence) ApplyHighlightFilter(active bool) {
	if s.Len() == 0 {
		return
	}
	if !active {
		for _, r := range s.rows {
			r.Hidden = false
		}
		return
	}

	include := s.includeMask()
	for i, r := range s.rows {
		r.Hidden = !include[i]
		if include[i] && r.Collapsed {
			r.Collapsed = false
		}
	}
}

// IncludeSet returns, in ascending order, the indices the highlight filter
// keeps visible.
func (s *Sequence) IncludeSet() []int {
	include := s.includeMask()
	out := make([]int, 0, len(include))
	for i, ok := range include {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// includeMask computes the include set:
//
//  1. seeds: highlighted rows that are not section headers;
//  2. the ancestor chain of every seed;
//  3. the descendant block of every row included so far, ancestors as well
//     as seeds;
//  4. every section header whose descendant block holds an included row.
func (s *Sequence) includeMask() []bool {
	n := s.Len()
	include := make([]bool, n)
	var seeds []int
	for i := range n {
		if s.IsHighlighted(i) {
			include[i] = true
			seeds = append(seeds, i)
		}
	}

	for _, i := range seeds {
		// Walk back keeping the running minimum depth, so exactly one row
		// per shallower level is taken.
		minDepth := s.Depth(i)
		for j := i - 1; j >= 0 && minDepth > 0; j-- {
			if d := s.Depth(j); d < minDepth {
				include[j] = true
				minDepth = d
			}
		}
	}

	// Blocks nest, so once a block is marked every row inside it is covered
	// and the scan can resume after it.
	for i := 0; i < n; i++ {
		if !include[i] {
			continue
		}
		end := s.DescendantEnd(i)
		for k := i + 1; k < end; k++ {
			include[k] = true
		}
		i = max(i, end-1)
	}

	for i, r := range s.rows {
		if !r.SectionHeader || include[i] {
			continue
		}
		end := s.DescendantEnd(i)
		for k := i + 1; k < end; k++ {
			if include[k] {
				include[i] = true
				break
			}
		}
	}
	return include
}
