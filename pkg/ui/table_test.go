package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanderheijden86/changetree/pkg/testutil"
)

const catalog = `
#Products
  -Bundle
    *Changed attr
    -Plain attr
  -Other
#Pricing
  -Price
`

func newTestTable(outline string) TableModel {
	return NewTableModel(testutil.Parse(outline), TestTheme())
}

func TestTableModel_InitialState(t *testing.T) {
	tbl := newTestTable(catalog)
	if got := tbl.VisibleCount(); got != 7 {
		t.Fatalf("VisibleCount = %d, want 7", got)
	}
	if tbl.Cursor() != 0 || tbl.SelectedIndex() != 0 {
		t.Errorf("cursor = %d/%d, want 0/0", tbl.Cursor(), tbl.SelectedIndex())
	}
	if r := tbl.SelectedRow(); r == nil || r.Label != "Products" {
		t.Errorf("SelectedRow = %v, want Products", r)
	}
}

func TestTableModel_ToggleKeepsCursorOnRow(t *testing.T) {
	tbl := newTestTable(catalog)
	if !tbl.Select(1) {
		t.Fatal("Select(1) failed")
	}
	if !tbl.ToggleSelected() {
		t.Fatal("expected Bundle to toggle")
	}
	if got := tbl.VisibleCount(); got != 5 {
		t.Errorf("VisibleCount after collapse = %d, want 5", got)
	}
	if tbl.SelectedIndex() != 1 {
		t.Errorf("SelectedIndex = %d, want 1", tbl.SelectedIndex())
	}
	if tbl.Dispatcher().Applied() != 1 {
		t.Errorf("Applied = %d, want 1", tbl.Dispatcher().Applied())
	}
}

func TestTableModel_ToggleLeafIsNoop(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.Select(6)
	if tbl.ToggleSelected() {
		t.Error("leaf row should not toggle")
	}
	if tbl.Dispatcher().Applied() != 0 {
		t.Error("no command should have been dispatched")
	}
}

func TestTableModel_CollapseAllMovesCursorToVisibleAncestor(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.Select(2)

	tbl.CollapseAll()

	testutil.AssertVisibleLabels(t, tbl.Sequence(), "Products", "Pricing")
	if r := tbl.SelectedRow(); r == nil || r.Label != "Products" {
		t.Errorf("SelectedRow = %v, want Products", r)
	}

	tbl.ExpandAll()
	if got := tbl.VisibleCount(); got != 7 {
		t.Errorf("VisibleCount after ExpandAll = %d, want 7", got)
	}
	for i, r := range tbl.Sequence().Forward(0) {
		if r.Collapsed {
			t.Errorf("row %d (%s) still collapsed", i, r.Label)
		}
	}
}

func TestTableModel_Filter(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.ToggleFilter()

	if !tbl.FilterActive() {
		t.Fatal("expected filter to be active")
	}
	testutil.AssertVisibleLabels(t, tbl.Sequence(), "Products", "Bundle", "Changed attr", "Plain attr", "Other")
	testutil.AssertHidden(t, tbl.Sequence(), "Pricing", "Price")

	tbl.ToggleFilter()
	if tbl.FilterActive() {
		t.Fatal("expected filter to be off")
	}
	if got := tbl.VisibleCount(); got != 7 {
		t.Errorf("VisibleCount = %d, want 7", got)
	}
}

func TestTableModel_NextPrevChanged(t *testing.T) {
	tbl := newTestTable(catalog)
	if !tbl.NextChanged() {
		t.Fatal("expected a changed row")
	}
	if tbl.SelectedIndex() != 2 {
		t.Errorf("SelectedIndex = %d, want 2", tbl.SelectedIndex())
	}
	// Only one changed row: wrapping lands on itself.
	if !tbl.PrevChanged() || tbl.SelectedIndex() != 2 {
		t.Errorf("PrevChanged should wrap to row 2, got %d", tbl.SelectedIndex())
	}

	plain := newTestTable("-A\n-B\n")
	if plain.NextChanged() {
		t.Error("expected no changed row")
	}
}

func TestTableModel_JumpToParent(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.Select(3)

	if !tbl.JumpToParent() || tbl.SelectedIndex() != 1 {
		t.Fatalf("expected Bundle, got %d", tbl.SelectedIndex())
	}
	if !tbl.JumpToParent() || tbl.SelectedIndex() != 0 {
		t.Fatalf("expected Products, got %d", tbl.SelectedIndex())
	}
	if tbl.JumpToParent() {
		t.Error("root row has no parent")
	}
}

func TestTableModel_Navigation(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.MoveUp()
	if tbl.Cursor() != 0 {
		t.Errorf("MoveUp at top moved cursor to %d", tbl.Cursor())
	}
	tbl.MoveDown()
	tbl.MoveDown()
	if tbl.Cursor() != 2 {
		t.Errorf("Cursor = %d, want 2", tbl.Cursor())
	}
	tbl.JumpToBottom()
	if tbl.Cursor() != 6 {
		t.Errorf("Cursor = %d, want 6", tbl.Cursor())
	}
	tbl.MoveDown()
	if tbl.Cursor() != 6 {
		t.Errorf("MoveDown at bottom moved cursor to %d", tbl.Cursor())
	}
	tbl.JumpToTop()
	if tbl.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", tbl.Cursor())
	}
}

func TestTableModel_SelectHiddenRow(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.Select(1)
	tbl.ToggleSelected()
	if tbl.Select(2) {
		t.Error("hidden row should not be selectable")
	}
}

func TestTableModel_View(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.SetSize(100, 20)
	view := tbl.View()

	for _, want := range []string{"Item", "Created", "Last Modified", "Bundle", "Changed attr", "▾", "•", "2024-06-01"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Page ") {
		t.Error("position indicator should not show when rows fit")
	}

	tbl.Select(1)
	tbl.ToggleSelected()
	if view := tbl.View(); !strings.Contains(view, "▸") || strings.Contains(view, "Plain attr") {
		t.Error("collapsed Bundle should show ▸ and hide its children")
	}
}

func TestTableModel_PositionIndicator(t *testing.T) {
	var sb strings.Builder
	for i := range 30 {
		fmt.Fprintf(&sb, "-Row %02d\n", i)
	}
	tbl := newTestTable(sb.String())
	tbl.SetSize(80, 10)

	if view := tbl.View(); !strings.Contains(view, "Page 1/4 (1-8 of 30)") {
		t.Errorf("unexpected indicator in view:\n%s", view)
	}

	tbl.JumpToBottom()
	view := tbl.View()
	if !strings.Contains(view, "(23-30 of 30)") {
		t.Errorf("unexpected indicator after JumpToBottom:\n%s", view)
	}
	if !strings.Contains(view, "Row 29") || strings.Contains(view, "Row 00") {
		t.Error("viewport should follow the cursor")
	}
}

func TestTableModel_EmptyStates(t *testing.T) {
	tbl := newTestTable("")
	if view := tbl.View(); !strings.Contains(view, "no rows") {
		t.Errorf("unexpected empty view: %q", view)
	}

	plain := newTestTable("#Section\n  -A\n")
	plain.ToggleFilter()
	if view := plain.View(); !strings.Contains(view, "No rows changed") {
		t.Errorf("unexpected filtered view: %q", view)
	}
}

func TestTableModel_Reset(t *testing.T) {
	tbl := newTestTable(catalog)
	tbl.ToggleFilter()
	tbl.Reset(testutil.Parse("-A\n  *B\n-C\n"))

	if !tbl.FilterActive() {
		t.Fatal("filter state should survive a reset")
	}
	testutil.AssertVisibleLabels(t, tbl.Sequence(), "A", "B")
	if tbl.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", tbl.Cursor())
	}
}
