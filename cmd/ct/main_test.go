package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/changetree/pkg/version"
)

const catalogReport = `{
  "title": "Catalog",
  "cutoff": "2024-01-01T00:00:00Z",
  "nodes": [
    {"section": "Products", "children": [
      {"entity": "Product2", "record": {"id": "01t1", "name": "Bundle", "created_date": "2023-01-01", "last_modified_date": "2024-02-01"},
       "children": [
        {"entity": "Attr", "record": {"id": "a1", "name": "Color", "created_date": "2022-01-01"}}
      ]},
      {"entity": "Product2", "record": {"id": "01t2", "name": "Old", "created_date": "2022-01-01"}}
    ]},
    {"section": "Pricing", "children": [
      {"entity": "Price", "record": {"id": "p1", "name": "List", "created_date": "2022-01-01"}}
    ]}
  ]
}`

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(catalogReport), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCT executes the root command with isolated config and state dirs.
func runCT(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestPrint(t *testing.T) {
	out, err := runCT(t, "print", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	want := []string{
		"▾ Products",
		"  ▾ Product2: Bundle  2023-01-01  2024-02-01*",
		"    • Attr: Color  2022-01-01",
		"  • Product2: Old  2022-01-01",
		"▾ Pricing",
		"  • Price: List  2022-01-01",
	}
	got := lines(out)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPrintOnlyHighlighted(t *testing.T) {
	out, err := runCT(t, "print", "--only-highlighted", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	// Products is Bundle's ancestor, so its whole block stays; Pricing goes.
	want := []string{
		"▾ Products",
		"  ▾ Product2: Bundle  2023-01-01  2024-02-01*",
		"    • Attr: Color  2022-01-01",
		"  • Product2: Old  2022-01-01",
	}
	got := lines(out)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPrintCutoffOverride(t *testing.T) {
	out, err := runCT(t, "print", "--only-highlighted", "--cutoff", "2025-01-01", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("nothing changed after 2025, got:\n%s", out)
	}
}

func TestPrintCollapseDepth(t *testing.T) {
	out, err := runCT(t, "print", "--collapse-depth", "1", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.Contains(out, "Color") {
		t.Error("Color should be hidden under collapsed Bundle")
	}
	if !strings.Contains(out, "▸ Product2: Bundle") {
		t.Errorf("Bundle should show the collapsed glyph:\n%s", out)
	}
}

func TestInvalidCutoff(t *testing.T) {
	if _, err := runCT(t, "print", "--cutoff", "yesterday", writeReport(t)); err == nil {
		t.Error("expected an error for an invalid cutoff")
	}
}

func TestRootWithoutTTYPrints(t *testing.T) {
	if isTerminal() {
		t.Skip("running attached to a terminal")
	}
	out, err := runCT(t, writeReport(t))
	if err != nil {
		t.Fatalf("ct: %v", err)
	}
	if !strings.Contains(out, "Product2: Bundle") {
		t.Errorf("expected printed rows, got:\n%s", out)
	}
}

func TestRootWithoutArgsShowsHelp(t *testing.T) {
	out, err := runCT(t)
	if err != nil {
		t.Fatalf("ct: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage, got:\n%s", out)
	}
}

func TestNamedReportFromConfig(t *testing.T) {
	report := writeReport(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "reports:\n  - name: cat\n    path: " + report + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCT(t, "print", "--config", cfgPath, "cat")
	if err != nil {
		t.Fatalf("print cat: %v", err)
	}
	if !strings.Contains(out, "Pricing") {
		t.Errorf("expected report rows, got:\n%s", out)
	}

	out, err = runCT(t, "print", "--config", cfgPath)
	if err != nil {
		t.Fatalf("print without args: %v", err)
	}
	if !strings.Contains(out, "Pricing") {
		t.Errorf("configured reports should be used by default, got:\n%s", out)
	}
}

func TestExportMarkdownFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "catalog.md")
	out, err := runCT(t, "export", "-o", dest, writeReport(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported md to "+dest) {
		t.Errorf("unexpected output %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Catalog") {
		t.Errorf("unexpected markdown:\n%s", data)
	}
}

func TestExportHTMLToStdout(t *testing.T) {
	out, err := runCT(t, "export", "-f", "html", "-o", "-", writeReport(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "<tr") || !strings.Contains(out, "highlight-cell") {
		t.Errorf("expected an HTML table with a highlighted cell")
	}
}

func TestExportErrors(t *testing.T) {
	report := writeReport(t)
	if _, err := runCT(t, "export", "-f", "pdf", "-o", "-", report); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := runCT(t, "export", "-f", "sqlite", "-o", "-", report); err == nil {
		t.Error("sqlite cannot be streamed")
	}
}

func TestExportSQLiteRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snap.db")
	if _, err := runCT(t, "export", "-f", "sqlite", "-o", db, writeReport(t)); err != nil {
		t.Fatalf("export: %v", err)
	}

	out, err := runCT(t, "snapshots", db)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if got := lines(out); len(got) != 1 || !strings.Contains(got[0], "Catalog") || !strings.Contains(got[0], "6 rows") {
		t.Errorf("unexpected snapshot listing:\n%s", out)
	}

	out, err = runCT(t, "print", db)
	if err != nil {
		t.Fatalf("print snapshot: %v", err)
	}
	if !strings.Contains(out, "2024-02-01*") {
		t.Errorf("highlight markers should survive the snapshot:\n%s", out)
	}
}

func TestSnapshotsRejectsJSON(t *testing.T) {
	if _, err := runCT(t, "snapshots", writeReport(t)); err == nil {
		t.Error("expected an error for a non-SQLite source")
	}
}

func TestStats(t *testing.T) {
	out, err := runCT(t, "stats", writeReport(t))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Rows:          6", "Sections:      2", "Changed:       1", "Filter keeps:  4", "Max depth:     2"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewRaw(t *testing.T) {
	out, err := runCT(t, "preview", "--raw", writeReport(t))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.HasPrefix(out, "# Catalog") {
		t.Errorf("unexpected markdown:\n%s", out)
	}
}

func TestPreviewRendered(t *testing.T) {
	out, err := runCT(t, "preview", writeReport(t))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Catalog") || !strings.Contains(out, "Bundle") {
		t.Errorf("expected rendered markdown, got:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCT(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "ct "+version.Version {
		t.Errorf("version = %q", out)
	}
}

func TestMissingReport(t *testing.T) {
	if _, err := runCT(t, "print", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing report")
	}
}

func TestExportHooks(t *testing.T) {
	report := writeReport(t)
	project := t.TempDir()
	t.Chdir(project)
	if err := os.MkdirAll(filepath.Join(project, ".ct"), 0o755); err != nil {
		t.Fatal(err)
	}
	hooksYAML := `hooks:
  post-export:
    - name: mark
      command: echo "$CT_EXPORT_FORMAT $CT_ROW_COUNT" > "$CT_EXPORT_PATH.done"
`
	if err := os.WriteFile(filepath.Join(project, ".ct", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(project, "changes.html")
	if _, err := runCT(t, "export", "-o", dest, report); err != nil {
		t.Fatalf("export: %v", err)
	}
	marker, err := os.ReadFile(dest + ".done")
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if strings.TrimSpace(string(marker)) != "html 6" {
		t.Errorf("marker = %q, want \"html 6\"", marker)
	}

	other := filepath.Join(project, "skipped.html")
	if _, err := runCT(t, "export", "--no-hooks", "-o", other, report); err != nil {
		t.Fatalf("export --no-hooks: %v", err)
	}
	if _, err := os.Stat(other + ".done"); !os.IsNotExist(err) {
		t.Error("--no-hooks should skip the hooks")
	}
}

func TestExportCancelledByPreHook(t *testing.T) {
	report := writeReport(t)
	project := t.TempDir()
	t.Chdir(project)
	if err := os.MkdirAll(filepath.Join(project, ".ct"), 0o755); err != nil {
		t.Fatal(err)
	}
	hooksYAML := "hooks:\n  pre-export:\n    - command: exit 1\n"
	if err := os.WriteFile(filepath.Join(project, ".ct", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(project, "changes.md")
	if _, err := runCT(t, "export", "-o", dest, report); err == nil {
		t.Fatal("expected the failing pre-export hook to cancel the export")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("nothing should be written when the export is cancelled")
	}
}

func TestPrintRelativeCutoff(t *testing.T) {
	// Every record in the fixture is years old.
	out, err := runCT(t, "print", "--only-highlighted", "--cutoff", "30d", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("nothing changed in the last 30 days, got:\n%s", out)
	}
}

func TestPrintWithRecipe(t *testing.T) {
	out, err := runCT(t, "print", "--recipe", "changed", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if got := lines(out); len(got) != 4 || strings.Contains(out, "Pricing") {
		t.Errorf("changed recipe should filter to the Products block, got:\n%s", out)
	}

	out, err = runCT(t, "print", "--recipe", "outline", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	want := []string{"▸ Products", "▸ Pricing"}
	got := lines(out)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("outline recipe = %q, want %q", got, want)
	}
}

func TestRecipeFlagsOverride(t *testing.T) {
	out, err := runCT(t, "print", "--recipe", "outline", "--collapse-depth", "1", writeReport(t))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, "Bundle") || strings.Contains(out, "Color") {
		t.Errorf("--collapse-depth should win over the recipe, got:\n%s", out)
	}
}

func TestUnknownRecipe(t *testing.T) {
	_, err := runCT(t, "print", "--recipe", "nope", writeReport(t))
	if err == nil || !strings.Contains(err.Error(), "unknown recipe") {
		t.Errorf("expected unknown recipe error, got %v", err)
	}
}

func TestRecipesList(t *testing.T) {
	out, err := runCT(t, "recipes")
	if err != nil {
		t.Fatalf("recipes: %v", err)
	}
	for _, name := range []string{"changed", "default", "outline", "recent"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing recipe %s in:\n%s", name, out)
		}
	}
}
