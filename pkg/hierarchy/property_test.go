package hierarchy_test

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/testutil"
)

// drawSequence draws a structurally valid sequence in its rendered state:
// every row is at most one level deeper than its predecessor, and the blocks
// of collapsed rows are hidden.
func drawSequence(t *rapid.T) *hierarchy.Sequence {
	n := rapid.IntRange(1, 40).Draw(t, "rows")
	rows := make([]*hierarchy.Row, 0, n)
	depth := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			depth = rapid.IntRange(0, depth+1).Draw(t, fmt.Sprintf("depth%d", i))
		}
		label := fmt.Sprintf("r%d", i)
		if rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("kind%d", i)) == 0 {
			rows = append(rows, testutil.SectionRow(depth, label))
		} else {
			changed := rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("changed%d", i)) == 0
			rows = append(rows, testutil.ContentRow(depth, label, changed))
		}
	}
	for i, r := range rows {
		r.Toggleable = i+1 < len(rows) && rows[i+1].Depth > r.Depth
		if r.Toggleable {
			r.Collapsed = rapid.Bool().Draw(t, fmt.Sprintf("collapsed%d", i))
		}
	}
	seq := hierarchy.NewSequence(rows)
	seq.ApplyCollapsed()
	return seq
}

func visibleParents(seq *hierarchy.Sequence) []int {
	var out []int
	for _, i := range seq.VisibleIndices() {
		if seq.HasChildren(i) {
			out = append(out, i)
		}
	}
	return out
}

func TestPropertyToggleRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := drawSequence(t)
		parents := visibleParents(seq)
		if len(parents) == 0 {
			t.Skip("no visible parent rows")
		}
		i := rapid.SampledFrom(parents).Draw(t, "row")
		before := testutil.HiddenMask(seq)
		collapsed := seq.Row(i).Collapsed

		seq.ToggleAt(i)
		seq.ToggleAt(i)

		if seq.Row(i).Collapsed != collapsed {
			t.Fatalf("row %d collapse flag not restored", i)
		}
		for k, h := range testutil.HiddenMask(seq) {
			if h != before[k] {
				t.Fatalf("row %d: hidden=%v before, %v after round trip", k, before[k], h)
			}
		}
	})
}

func TestPropertyCollapseIsDepthBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := drawSequence(t)
		var expanded []int
		for _, i := range visibleParents(seq) {
			if !seq.Row(i).Collapsed {
				expanded = append(expanded, i)
			}
		}
		if len(expanded) == 0 {
			t.Skip("no expanded parent rows")
		}
		i := rapid.SampledFrom(expanded).Draw(t, "row")
		before := testutil.HiddenMask(seq)
		end := seq.DescendantEnd(i)

		seq.ToggleAt(i)

		for k, r := range seq.Rows() {
			inBlock := k > i && k < end
			switch {
			case inBlock && !r.Hidden:
				t.Fatalf("row %d inside the collapsed block is visible", k)
			case !inBlock && r.Hidden != before[k]:
				t.Fatalf("row %d outside the block changed", k)
			}
		}
	})
}

func TestPropertyFilterContract(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := drawSequence(t)
		seq.ApplyHighlightFilter(true)

		for i, r := range seq.Rows() {
			if seq.IsHighlighted(i) && r.Hidden {
				t.Fatalf("highlighted row %d hidden", i)
			}
			if !r.Hidden && r.Collapsed {
				t.Fatalf("visible row %d left collapsed", i)
			}
		}

		// Every seed's ancestor chain is visible.
		for i := range seq.Len() {
			if !seq.IsHighlighted(i) {
				continue
			}
			minDepth := seq.Depth(i)
			for j := i - 1; j >= 0; j-- {
				if d := seq.Depth(j); d < minDepth {
					if seq.Row(j).Hidden {
						t.Fatalf("ancestor %d of seed %d hidden", j, i)
					}
					minDepth = d
				}
			}
		}

		if got, want := seq.VisibleIndices(), referenceIncludeSet(seq); !slices.Equal(got, want) {
			t.Fatalf("visible rows %v, want %v", got, want)
		}

		// Idempotent.
		mask := testutil.HiddenMask(seq)
		seq.ApplyHighlightFilter(true)
		for k, h := range testutil.HiddenMask(seq) {
			if h != mask[k] {
				t.Fatalf("second filter pass changed row %d", k)
			}
		}
	})
}

func TestPropertyFilterOffShowsAll(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := drawSequence(t)
		steps := rapid.IntRange(0, 6).Draw(t, "steps")
		for s := 0; s < steps; s++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("filter%d", s)) {
				seq.ApplyHighlightFilter(rapid.Bool().Draw(t, fmt.Sprintf("active%d", s)))
			} else {
				seq.ToggleAt(rapid.IntRange(0, seq.Len()-1).Draw(t, fmt.Sprintf("toggle%d", s)))
			}
		}
		seq.ApplyHighlightFilter(false)
		if got := len(seq.VisibleIndices()); got != seq.Len() {
			t.Fatalf("expected all %d rows visible, got %d", seq.Len(), got)
		}
	})
}

// referenceIncludeSet computes the include set row by row the way the HTML
// report script does: one insertion-ordered set, grown while it is being
// walked, so rows added as ancestors or descendants get their own ancestor
// and descendant passes.
func referenceIncludeSet(seq *hierarchy.Sequence) []int {
	n := seq.Len()
	in := make([]bool, n)
	var order []int
	add := func(i int) {
		if !in[i] {
			in[i] = true
			order = append(order, i)
		}
	}

	for i := range n {
		if !seq.Row(i).SectionHeader && seq.IsHighlighted(i) {
			add(i)
		}
	}
	for k := 0; k < len(order); k++ {
		i := order[k]
		base := seq.Depth(i)
		minDepth := base
		for j := i - 1; j >= 0; j-- {
			if d := seq.Depth(j); d < minDepth {
				add(j)
				minDepth = d
			}
		}
		for j := i + 1; j < n && seq.Depth(j) > base; j++ {
			add(j)
		}
	}
	for i := range n {
		if !seq.Row(i).SectionHeader {
			continue
		}
		h := seq.Depth(i)
		for j := i + 1; j < n && seq.Depth(j) > h; j++ {
			if in[j] {
				add(i)
				break
			}
		}
	}

	out := slices.Clone(order)
	slices.Sort(out)
	return out
}

func TestPropertyIncludeSetMatchesReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := drawSequence(t)
		if got, want := seq.IncludeSet(), referenceIncludeSet(seq); !slices.Equal(got, want) {
			t.Fatalf("include set %v, want %v", got, want)
		}
	})
}
