package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/changetree/pkg/model"
)

const jsonReport = `{
  "title": "Catalog changes",
  "cutoff": "2024-01-01T00:00:00Z",
  "instance_url": "https://org.example.com",
  "nodes": [
    {
      "entity": "Product2",
      "record": {"id": "01t1", "name": "Bundle", "created_date": "2023-01-01", "last_modified_date": "2024-02-01"},
      "children": [
        {"section": "Attribute", "collapsed": true, "children": [
          {"record": {"id": "a1", "name": "Color", "created_date": "2022-01-01"}}
        ]}
      ]
    },
    {"entity": "Product2", "record": {"id": "01t2", "name": "Old"}}
  ]
}`

const yamlRows = `
title: Pre-rendered
rows:
  - depth: "0"
    section_header: true
    cells: [{text: Products}]
  - depth: 1
    label: Bundle
    cells: [{text: Bundle}, {text: "2024-01-01"}, {text: "2024-02-01", highlight: true}]
  - depth: not-a-number
    label: Broken
`

func TestDecodeJSONNodes(t *testing.T) {
	doc, err := Decode(strings.NewReader(jsonReport), FormatJSON, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	seq := doc.Sequence
	if seq.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", seq.Len())
	}
	if !seq.IsHighlighted(0) {
		t.Error("expected Bundle highlighted (modified after cutoff)")
	}
	if seq.IsHighlighted(2) || seq.IsHighlighted(3) {
		t.Error("expected Color and Old not highlighted")
	}
	// The Attribute section starts collapsed, so Color is hidden.
	if !seq.Row(2).Hidden {
		t.Error("expected descendant of collapsed section hidden")
	}
	if doc.Title() != "Catalog changes" {
		t.Errorf("unexpected title %q", doc.Title())
	}
}

func TestDecodeCutoffOverride(t *testing.T) {
	opts := Options{Cutoff: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	doc, err := Decode(strings.NewReader(jsonReport), FormatJSON, opts)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := doc.Sequence.HighlightedCount(); got != 2 {
		t.Errorf("expected 2 highlighted rows with an early cutoff, got %d", got)
	}
}

func TestDecodeYAMLRows(t *testing.T) {
	doc, err := Decode(strings.NewReader(yamlRows), FormatYAML, Options{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	seq := doc.Sequence
	if seq.Depth(1) != 1 || seq.Depth(2) != 0 {
		t.Errorf("unexpected depths %d, %d", seq.Depth(1), seq.Depth(2))
	}
	if !seq.IsHighlighted(1) {
		t.Error("expected pre-rendered highlight marker to be honoured")
	}
	if seq.IsHighlighted(2) {
		t.Error("row without cells must not be highlighted")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(strings.NewReader("{"), FormatJSON, Options{}); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Decode(strings.NewReader(`{"title": "x"}`), FormatJSON, Options{}); !errors.Is(err, model.ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
	if _, err := Decode(strings.NewReader(""), Format("toml"), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadFileAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.json")
	if err := os.WriteFile(src, []byte(jsonReport), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(src, Options{})
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if doc.Source != src {
		t.Errorf("expected source %q, got %q", src, doc.Source)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc.Report, FormatYAML); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	again, err := Decode(&buf, FormatYAML, Options{})
	if err != nil {
		t.Fatalf("re-decoding YAML failed: %v", err)
	}
	if again.Sequence.Len() != doc.Sequence.Len() {
		t.Errorf("expected %d rows after re-encoding, got %d", doc.Sequence.Len(), again.Sequence.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "report.txt"), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
