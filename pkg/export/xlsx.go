package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/model"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Changes"

// maxOutlineLevel is the deepest row grouping Excel supports.
const maxOutlineLevel = 7

const (
	xlsxHighlightFill = "FFF3B0"
	xlsxSectionFill   = "E4E7EB"
)

// xlsxStyles caches style ids by (depth, kind) so each combination is
// registered once.
type xlsxStyles struct {
	f     *excelize.File
	cache map[[2]int]int
}

const (
	styleLabel = iota
	styleSection
	styleHighlightLabel
	styleHighlight
	styleHeader
)

func (s *xlsxStyles) get(depth, kind int) (int, error) {
	key := [2]int{depth, kind}
	if id, ok := s.cache[key]; ok {
		return id, nil
	}
	st := &excelize.Style{Alignment: &excelize.Alignment{Indent: depth, Vertical: "top"}}
	switch kind {
	case styleSection:
		st.Font = &excelize.Font{Bold: true}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{xlsxSectionFill}}
	case styleHighlightLabel:
		st.Font = &excelize.Font{Bold: true}
	case styleHighlight:
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{xlsxHighlightFill}}
	case styleHeader:
		st.Font = &excelize.Font{Bold: true}
		st.Border = []excelize.Border{{Type: "bottom", Color: "7B8794", Style: 1}}
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.cache[key] = id
	return id, nil
}

// WriteXLSX writes a single-sheet workbook. Row outline levels follow depth
// (capped at 7) so Excel's grouping buttons mirror the collapse toggles;
// rows hidden in the viewer are hidden in the sheet.
func WriteXLSX(w io.Writer, seq *hierarchy.Sequence, opts Options) error {
	f, err := BuildWorkbook(seq, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays the rows out in an in-memory workbook.
func BuildWorkbook(seq *hierarchy.Sequence, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillWorkbook(f, seq, opts); err != nil {
		f.Close()
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, seq *hierarchy.Sequence, opts Options) error {
	styles := &xlsxStyles{f: f, cache: make(map[[2]int]int)}
	headers := opts.headers()

	headerStyle, err := styles.get(0, styleHeader)
	if err != nil {
		return err
	}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	designated := make(map[int]bool)
	for _, c := range seq.HighlightColumns() {
		designated[c] = true
	}

	excelRow := 1
	for _, i := range selectRows(seq, opts.OnlyVisible) {
		excelRow++
		row := seq.Row(i)
		depth := seq.Depth(i)

		if err := writeXLSXRow(f, styles, seq, i, excelRow, len(headers), designated, opts.InstanceURL); err != nil {
			return err
		}
		if depth > 0 {
			if err := f.SetRowOutlineLevel(SheetName, excelRow, uint8(min(depth, maxOutlineLevel))); err != nil {
				return err
			}
		}
		if row.Hidden {
			if err := f.SetRowVisible(SheetName, excelRow, false); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 60); err != nil {
		return err
	}
	if len(headers) > 1 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		if err := f.SetColWidth(SheetName, "B", last, 24); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSXRow(f *excelize.File, styles *xlsxStyles, seq *hierarchy.Sequence, i, excelRow, width int, designated map[int]bool, instanceURL string) error {
	row := seq.Row(i)
	depth := seq.Depth(i)

	labelCell, _ := excelize.CoordinatesToCellName(1, excelRow)
	label := row.CellText(0)
	if label == "" || row.SectionHeader {
		label = row.Label
	}
	if err := f.SetCellValue(SheetName, labelCell, label); err != nil {
		return err
	}
	if url := model.RecordURL(instanceURL, row.RecordID); url != "" {
		if err := f.SetCellHyperLink(SheetName, labelCell, url, "External"); err != nil {
			return err
		}
	}

	kind := styleLabel
	switch {
	case row.SectionHeader:
		kind = styleSection
	case seq.IsHighlighted(i):
		kind = styleHighlightLabel
	}
	labelStyle, err := styles.get(depth, kind)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, labelCell, labelCell, labelStyle); err != nil {
		return err
	}
	if row.SectionHeader {
		return nil
	}

	for c := 1; c < width; c++ {
		cell, _ := excelize.CoordinatesToCellName(c+1, excelRow)
		if err := f.SetCellValue(SheetName, cell, row.CellText(c)); err != nil {
			return err
		}
		if designated[c] && row.CellHighlighted(c) {
			hl, err := styles.get(0, styleHighlight)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, cell, cell, hl); err != nil {
				return err
			}
		}
	}
	return nil
}
