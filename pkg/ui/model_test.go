package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/changetree/pkg/loader"
	"github.com/vanderheijden86/changetree/pkg/model"
	"github.com/vanderheijden86/changetree/pkg/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts ModelOptions) Model {
	t.Helper()
	doc := &loader.Document{
		Source:   "catalog.json",
		Report:   &model.Report{Title: "Catalog", Cutoff: "2024-05-01"},
		Sequence: testutil.Parse(catalog),
	}
	m := NewModel(doc, opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_ViewBeforeReady(t *testing.T) {
	doc := &loader.Document{Source: "x.json", Sequence: testutil.Parse(catalog)}
	m := NewModel(doc, ModelOptions{})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View = %q, want Loading...", got)
	}
	m = send(t, m, ReadyTimeoutMsg{})
	if !strings.Contains(m.View(), "Catalog") && !strings.Contains(m.View(), "x.json") {
		t.Error("expected title after ready timeout")
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	view := m.View()
	for _, want := range []string{"Catalog", "changes since 2024-05-01", "ALL ROWS", "7 of 7 rows", "1 changed", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_FilterKey(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	m = send(t, m, runes("f"))

	if !m.Table().FilterActive() {
		t.Fatal("f should enable the filter")
	}
	view := m.View()
	if !strings.Contains(view, "CHANGED ONLY") || !strings.Contains(view, "5 of 7 rows") {
		t.Errorf("unexpected view after filter:\n%s", view)
	}
}

func TestModel_OnlyHighlightedOption(t *testing.T) {
	m := newTestModel(t, ModelOptions{OnlyHighlighted: true})
	if !m.Table().FilterActive() {
		t.Fatal("filter should start active")
	}
	testutil.AssertVisibleLabels(t, m.Table().Sequence(), "Products", "Bundle", "Changed attr", "Plain attr", "Other")
}

func TestModel_ToggleKeys(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	if r := m.Table().SelectedRow(); r == nil || r.Label != "Bundle" || !r.Collapsed {
		t.Fatalf("expected collapsed Bundle under cursor, got %+v", r)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Table().SelectedRow().Collapsed {
		t.Error("space should expand Bundle again")
	}

	m = send(t, m, runes("C"))
	if got := m.Table().VisibleCount(); got != 2 {
		t.Errorf("VisibleCount after collapse all = %d, want 2", got)
	}
	m = send(t, m, runes("E"))
	if got := m.Table().VisibleCount(); got != 7 {
		t.Errorf("VisibleCount after expand all = %d, want 7", got)
	}
}

func TestModel_CopyID(t *testing.T) {
	var copied string
	m := newTestModel(t, ModelOptions{Copy: func(s string) error {
		copied = s
		return nil
	}})

	m = send(t, m, runes("y"))
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "no record id") {
		t.Errorf("section header copy status = %q/%v", msg, isErr)
	}

	m = send(t, m, runes("j"), runes("y"))
	if copied != "rec-bundle" {
		t.Errorf("copied = %q, want rec-bundle", copied)
	}
	if msg, isErr := m.Status(); isErr || msg != "Copied rec-bundle" {
		t.Errorf("status = %q/%v", msg, isErr)
	}
}

func TestModel_CopyError(t *testing.T) {
	m := newTestModel(t, ModelOptions{Copy: func(string) error { return errors.New("no clipboard") }})
	m = send(t, m, runes("j"), runes("y"))
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "no clipboard") {
		t.Errorf("status = %q/%v", msg, isErr)
	}
}

func TestModel_ReloadKeepsCursorAndFilter(t *testing.T) {
	reloaded := &loader.Document{
		Source: "catalog.json",
		Sequence: testutil.Parse(`
#Products
  -Other
  -Bundle
    *Changed attr
  *New item
`),
	}
	m := newTestModel(t, ModelOptions{Reload: func() (*loader.Document, error) { return reloaded, nil }})
	m = send(t, m, runes("j"))

	_, cmd := m.Update(runes("r"))
	if cmd == nil {
		t.Fatal("r should return a reload command")
	}
	msg := cmd()
	m = send(t, m, msg)

	if r := m.Table().SelectedRow(); r == nil || r.Label != "Bundle" {
		t.Fatalf("cursor should stay on Bundle, got %+v", r)
	}
	if st, _ := m.Status(); st != "Reloaded 5 rows" {
		t.Errorf("status = %q", st)
	}

	m = send(t, m, runes("f"))
	m = send(t, m, ReloadedMsg{Doc: &loader.Document{Sequence: testutil.Parse("-A\n  *B\n-C\n")}})
	if !m.Table().FilterActive() {
		t.Fatal("filter should survive reload")
	}
	testutil.AssertVisibleLabels(t, m.Table().Sequence(), "A", "B")
}

func TestModel_ReloadError(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	m = send(t, m, ReloadedMsg{Err: errors.New("boom")})
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "boom") {
		t.Errorf("status = %q/%v", msg, isErr)
	}
	if m.Table().Sequence().Len() != 7 {
		t.Error("failed reload should keep the old rows")
	}
}

func TestModel_FileChangedWithoutReloader(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	if _, cmd := m.Update(FileChangedMsg{}); cmd != nil {
		if msg := cmd(); msg != nil {
			t.Errorf("expected no message without a reloader, got %T", msg)
		}
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t, ModelOptions{})
	m = send(t, m, runes("?"))
	if view := m.View(); !strings.Contains(view, "collapse all") {
		t.Error("full help should list collapse all")
	}
	m = send(t, m, runes("?"))
	if view := m.View(); strings.Contains(view, "collapse all") {
		t.Error("short help should not list collapse all")
	}
}
