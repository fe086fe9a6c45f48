package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/changetree/pkg/model"
)

// ReportConfig controls synthetic catalog report generation.
type ReportConfig struct {
	Seed        int64     // Random seed for determinism
	Sections    int       // Top-level sections
	PerSection  int       // Records directly under each section
	MaxChildren int       // Upper bound on children per record
	MaxDepth    int       // Deepest record nesting below a section
	ChangeRate  float64   // Share of records modified after the cutoff
	Cutoff      time.Time // Report cutoff
}

// DefaultReportConfig returns a small report config for tests.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Seed:        7,
		Sections:    3,
		PerSection:  5,
		MaxChildren: 3,
		MaxDepth:    3,
		ChangeRate:  0.15,
		Cutoff:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var (
	sectionNames = []string{"Products", "Pricing", "Bundles", "Attributes", "Catalogs", "Promotions"}
	entityNames  = []string{"Product2", "PricebookEntry", "ProductOption", "Attribute", "ProductCategory"}
)

// GenerateReport builds a nested catalog report. Records modified after
// the cutoff are spread according to ChangeRate; everything else predates
// it.
func GenerateReport(cfg ReportConfig) *model.Report {
	rng := rand.New(rand.NewSource(cfg.Seed))
	g := &reportGen{cfg: cfg, rng: rng}

	report := &model.Report{
		Title:  fmt.Sprintf("Synthetic catalog (%d sections)", cfg.Sections),
		Cutoff: cfg.Cutoff.Format(time.RFC3339),
	}
	for s := range cfg.Sections {
		name := sectionNames[s%len(sectionNames)]
		if s >= len(sectionNames) {
			name = fmt.Sprintf("%s %d", name, s/len(sectionNames)+1)
		}
		section := &model.Node{Section: name}
		for range cfg.PerSection {
			section.Children = append(section.Children, g.record(1))
		}
		report.Nodes = append(report.Nodes, section)
	}
	return report
}

type reportGen struct {
	cfg  ReportConfig
	rng  *rand.Rand
	next int
}

func (g *reportGen) record(depth int) *model.Node {
	g.next++
	created := g.cfg.Cutoff.AddDate(0, 0, -30-g.rng.Intn(700))
	rec := &model.Record{
		ID:          fmt.Sprintf("rec%06d", g.next),
		Name:        fmt.Sprintf("Item %d", g.next),
		CreatedDate: created.Format(time.RFC3339),
	}
	if g.rng.Float64() < g.cfg.ChangeRate {
		rec.LastModifiedDate = g.cfg.Cutoff.AddDate(0, 0, 1+g.rng.Intn(90)).Format(time.RFC3339)
	} else if g.rng.Intn(2) == 0 {
		rec.LastModifiedDate = created.AddDate(0, 0, g.rng.Intn(20)).Format(time.RFC3339)
	}

	n := &model.Node{Entity: entityNames[g.rng.Intn(len(entityNames))], Record: rec}
	if depth < g.cfg.MaxDepth && g.cfg.MaxChildren > 0 {
		for range g.rng.Intn(g.cfg.MaxChildren + 1) {
			n.Children = append(n.Children, g.record(depth+1))
		}
	}
	return n
}
