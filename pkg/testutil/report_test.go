package testutil

import (
	"testing"
	"time"

	"github.com/vanderheijden86/changetree/pkg/model"
)

func TestGenerateReportDeterministic(t *testing.T) {
	cfg := DefaultReportConfig()
	a := GenerateReport(cfg)
	b := GenerateReport(cfg)

	if model.CountNodes(a.Nodes) != model.CountNodes(b.Nodes) {
		t.Fatal("same seed should produce the same tree")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("generated report is invalid: %v", err)
	}
	if len(a.Nodes) != cfg.Sections {
		t.Errorf("got %d sections, want %d", len(a.Nodes), cfg.Sections)
	}
}

func TestGenerateReportRows(t *testing.T) {
	cfg := DefaultReportConfig()
	cfg.Sections = 8
	cfg.ChangeRate = 1
	report := GenerateReport(cfg)

	rows := report.BuildRows(time.Time{})
	if len(rows) != model.CountNodes(report.Nodes) {
		t.Fatalf("got %d rows for %d nodes", len(rows), model.CountNodes(report.Nodes))
	}
	var sections []string
	for i, r := range rows {
		if r.Depth > cfg.MaxDepth {
			t.Errorf("row %d depth %d exceeds %d", i, r.Depth, cfg.MaxDepth)
		}
		if r.SectionHeader {
			sections = append(sections, r.Label)
			continue
		}
		if !r.CellHighlighted(2) {
			t.Errorf("row %d (%s) should be changed with ChangeRate 1", i, r.Label)
		}
	}
	if len(sections) != 8 || sections[6] != "Products 2" {
		t.Errorf("section names should repeat with a suffix, got %v", sections)
	}
}
