package testutil

import (
	"slices"
	"strings"
	"testing"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// VisibleLabels returns the labels of the rows that currently render.
func VisibleLabels(seq *hierarchy.Sequence) []string {
	var out []string
	for _, i := range seq.VisibleIndices() {
		out = append(out, seq.Row(i).Label)
	}
	return out
}

// HiddenMask snapshots the display toggle of every row.
func HiddenMask(seq *hierarchy.Sequence) []bool {
	out := make([]bool, seq.Len())
	for i, r := range seq.Rows() {
		out[i] = r.Hidden
	}
	return out
}

// FindLabel returns the index of the first row with the given label, or -1.
func FindLabel(seq *hierarchy.Sequence, label string) int {
	for i, r := range seq.Rows() {
		if r.Label == label {
			return i
		}
	}
	return -1
}

// AssertVisibleLabels verifies the exact list of rendered rows.
func AssertVisibleLabels(t *testing.T, seq *hierarchy.Sequence, want ...string) {
	t.Helper()
	got := VisibleLabels(seq)
	if !slices.Equal(got, want) {
		t.Errorf("visible rows mismatch\n got: %s\nwant: %s",
			strings.Join(got, ", "), strings.Join(want, ", "))
	}
}

// AssertVisible verifies the named rows render.
func AssertVisible(t *testing.T, seq *hierarchy.Sequence, labels ...string) {
	t.Helper()
	for _, l := range labels {
		i := FindLabel(seq, l)
		if i < 0 {
			t.Errorf("row %q not found", l)
			continue
		}
		if seq.Row(i).Hidden {
			t.Errorf("expected row %q to be visible", l)
		}
	}
}

// AssertHidden verifies the named rows do not render.
func AssertHidden(t *testing.T, seq *hierarchy.Sequence, labels ...string) {
	t.Helper()
	for _, l := range labels {
		i := FindLabel(seq, l)
		if i < 0 {
			t.Errorf("row %q not found", l)
			continue
		}
		if !seq.Row(i).Hidden {
			t.Errorf("expected row %q to be hidden", l)
		}
	}
}
