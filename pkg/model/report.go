package model

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// Report is a catalog change report: either a nested node tree or an
// already-rendered flat row list.
type Report struct {
	Title       string    `json:"title" yaml:"title"`
	Subtitle    string    `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	InstanceURL string    `json:"instance_url,omitempty" yaml:"instance_url,omitempty"`
	Cutoff      string    `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
	Nodes       []*Node   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Rows        []FlatRow `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// FlatRow is one pre-rendered row. Depth is kept loosely typed because
// renderers emit it as a string attribute; anything that is not a
// non-negative integer reads as 0.
type FlatRow struct {
	Depth         any              `json:"depth" yaml:"depth"`
	SectionHeader bool             `json:"section_header,omitempty" yaml:"section_header,omitempty"`
	Collapsed     bool             `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Label         string           `json:"label,omitempty" yaml:"label,omitempty"`
	RecordID      string           `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Cells         []hierarchy.Cell `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// ErrEmptyReport is returned by Validate for reports without rows or nodes.
var ErrEmptyReport = errors.New("report has neither nodes nor rows")

// Validate checks the report header fields.
func (r *Report) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Cutoff, validation.By(validTimestamp)),
		validation.Field(&r.InstanceURL, validation.By(validURL)),
	)
	if err != nil {
		return err
	}
	if len(r.Nodes) == 0 && len(r.Rows) == 0 {
		return ErrEmptyReport
	}
	return nil
}

func validTimestamp(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := ParseTimestamp(s); !ok {
		return fmt.Errorf("unrecognized timestamp %q", s)
	}
	return nil
}

func validURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if len(s) < 8 || (s[:7] != "http://" && s[:8] != "https://") {
		return errors.New("must start with http:// or https://")
	}
	return nil
}

// CutoffTime returns the parsed cutoff, or the zero time when unset or
// unparseable.
func (r *Report) CutoffTime() time.Time {
	t, _ := ParseTimestamp(r.Cutoff)
	return t
}

// BuildRows renders the report as table rows. Node trees are flattened with
// a policy built from override, or from the report cutoff when override is
// zero. Flat rows are taken as rendered: their highlight markers are used
// as they are.
func (r *Report) BuildRows(override time.Time) []*hierarchy.Row {
	if len(r.Nodes) > 0 {
		cutoff := override
		if cutoff.IsZero() {
			cutoff = r.CutoffTime()
		}
		return Flatten(r.Nodes, HighlightPolicy{Cutoff: cutoff})
	}

	rows := make([]*hierarchy.Row, 0, len(r.Rows))
	for _, fr := range r.Rows {
		rows = append(rows, &hierarchy.Row{
			Depth:         hierarchy.ParseDepth(fmt.Sprint(fr.Depth)),
			SectionHeader: fr.SectionHeader,
			Collapsed:     fr.Collapsed,
			Label:         fr.Label,
			RecordID:      fr.RecordID,
			Cells:         append([]hierarchy.Cell(nil), fr.Cells...),
		})
	}
	for i, row := range rows {
		row.Toggleable = i+1 < len(rows) && rows[i+1].Depth > row.Depth
		if row.Label == "" && len(row.Cells) > 0 {
			row.Label = row.Cells[0].Text
		}
	}
	return rows
}

// FlatRowsFrom captures rows in their current collapse state so a report can
// be re-encoded from an edited or merged sequence.
func FlatRowsFrom(rows []*hierarchy.Row) []FlatRow {
	out := make([]FlatRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, FlatRow{
			Depth:         row.Depth,
			SectionHeader: row.SectionHeader,
			Collapsed:     row.Collapsed,
			Label:         row.Label,
			RecordID:      row.RecordID,
			Cells:         append([]hierarchy.Cell(nil), row.Cells...),
		})
	}
	return out
}
