//go:build ignore

// generate_testdata.go creates synthetic catalog reports for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.json   (~100 rows)
//   tests/testdata/benchmark/medium.json  (~1000 rows)
//   tests/testdata/benchmark/large.json   (~5000 rows)
//   tests/testdata/benchmark/huge.json    (~20000 rows)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/changetree/pkg/model"
	"github.com/vanderheijden86/changetree/pkg/testutil"
)

type datasetSpec struct {
	name       string
	sections   int
	perSection int
}

var datasets = []datasetSpec{
	{"small", 2, 12},
	{"medium", 6, 40},
	{"large", 12, 110},
	{"huge", 24, 220},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		cfg := testutil.DefaultReportConfig()
		cfg.Seed = int64(ds.sections * ds.perSection) // Reproducible per-size
		cfg.Sections = ds.sections
		cfg.PerSection = ds.perSection

		report := testutil.GenerateReport(cfg)
		report.Title = fmt.Sprintf("Benchmark catalog (%s)", ds.name)

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes, %d rows)\n", outputPath, len(data), model.CountNodes(report.Nodes))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
