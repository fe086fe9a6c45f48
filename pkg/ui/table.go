package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

const (
	// cellWidth fits a YYYY-MM-DD date and the widest default header.
	cellWidth      = 14
	minLabelWidth  = 16
	defaultIndent  = 2
	defaultVisible = 19
)

// DefaultHeaders label the label column and the two timestamp cells.
var DefaultHeaders = []string{"Item", "Created", "Last Modified"}

// TableModel renders the visible rows of a Sequence as an indented table and
// routes toggle and filter actions through a Dispatcher.
type TableModel struct {
	dispatcher *hierarchy.Dispatcher
	theme      Theme

	visible        []int // Sequence indices of rows that render
	cursor         int   // Position within visible
	viewportOffset int

	width, height int
	indentWidth   int
	headers       []string
}

// NewTableModel creates a table over seq.
func NewTableModel(seq *hierarchy.Sequence, theme Theme) TableModel {
	t := TableModel{
		dispatcher:  hierarchy.NewDispatcher(seq),
		theme:       theme,
		indentWidth: defaultIndent,
		headers:     DefaultHeaders,
	}
	t.refresh()
	return t
}

// Dispatcher returns the dispatcher driving the table.
func (t *TableModel) Dispatcher() *hierarchy.Dispatcher {
	return t.dispatcher
}

// Sequence returns the sequence being displayed.
func (t *TableModel) Sequence() *hierarchy.Sequence {
	return t.dispatcher.Sequence()
}

// SetSize sets the viewport size.
func (t *TableModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetIndentWidth sets the number of columns per depth level.
func (t *TableModel) SetIndentWidth(w int) {
	if w < 0 {
		w = 0
	}
	t.indentWidth = w
}

// SetHeaders replaces the column headers.
func (t *TableModel) SetHeaders(h []string) {
	if len(h) > 0 {
		t.headers = h
	}
}

// VisibleCount returns the number of rows that render.
func (t *TableModel) VisibleCount() int {
	return len(t.visible)
}

// Cursor returns the cursor position within the visible rows.
func (t *TableModel) Cursor() int {
	return t.cursor
}

// SelectedIndex returns the Sequence index under the cursor, or -1.
func (t *TableModel) SelectedIndex() int {
	if t.cursor < 0 || t.cursor >= len(t.visible) {
		return -1
	}
	return t.visible[t.cursor]
}

// SelectedRow returns the row under the cursor, or nil.
func (t *TableModel) SelectedRow() *hierarchy.Row {
	return t.Sequence().Row(t.SelectedIndex())
}

// Select moves the cursor to Sequence index i. It reports false when row i
// does not render.
func (t *TableModel) Select(i int) bool {
	pos := sort.SearchInts(t.visible, i)
	if pos >= len(t.visible) || t.visible[pos] != i {
		return false
	}
	t.cursor = pos
	t.ensureCursorVisible()
	return true
}

// refresh recomputes the visible rows after the sequence changed. The cursor
// stays on the same row, or moves to the nearest visible row above it.
func (t *TableModel) refresh() {
	sel := t.SelectedIndex()
	t.visible = t.Sequence().VisibleIndices()
	if sel < 0 || len(t.visible) == 0 {
		t.cursor = 0
		t.ensureCursorVisible()
		return
	}
	pos := sort.SearchInts(t.visible, sel)
	if pos >= len(t.visible) || t.visible[pos] != sel {
		pos--
	}
	t.cursor = max(pos, 0)
	t.ensureCursorVisible()
}

// Reset swaps in a freshly loaded sequence. The current filter state is
// re-applied by the dispatcher.
func (t *TableModel) Reset(seq *hierarchy.Sequence) {
	t.dispatcher.Reset(seq)
	t.cursor = 0
	t.viewportOffset = 0
	t.visible = seq.VisibleIndices()
}

// ToggleSelected collapses or expands the row under the cursor. Rows without
// a toggle affordance are left alone.
func (t *TableModel) ToggleSelected() bool {
	i := t.SelectedIndex()
	r := t.Sequence().Row(i)
	if r == nil || !r.Toggleable {
		return false
	}
	t.dispatcher.Dispatch(hierarchy.ToggleCommand{Index: i})
	t.refresh()
	return true
}

// ToggleFilter flips the highlight filter.
func (t *TableModel) ToggleFilter() {
	t.dispatcher.ToggleFilter()
	t.refresh()
}

// FilterActive reports whether only changed rows are shown.
func (t *TableModel) FilterActive() bool {
	return t.dispatcher.FilterActive()
}

// ExpandAll expands every collapsed row, outermost first.
func (t *TableModel) ExpandAll() {
	seq := t.Sequence()
	for i, r := range seq.Forward(0) {
		if r.Toggleable && r.Collapsed {
			t.dispatcher.Dispatch(hierarchy.ToggleCommand{Index: i})
		}
	}
	t.refresh()
}

// CollapseAll collapses every expanded row that has children.
func (t *TableModel) CollapseAll() {
	seq := t.Sequence()
	for i, r := range seq.Backward(seq.Len() - 1) {
		if r.Toggleable && !r.Collapsed && seq.HasChildren(i) {
			t.dispatcher.Dispatch(hierarchy.ToggleCommand{Index: i})
		}
	}
	t.refresh()
}

// MoveDown moves the cursor down one row.
func (t *TableModel) MoveDown() {
	if t.cursor < len(t.visible)-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up one row.
func (t *TableModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// PageForwardFull moves the cursor forward by a full page.
func (t *TableModel) PageForwardFull() {
	t.cursor = min(t.cursor+t.effectiveVisibleCount(), len(t.visible)-1)
	t.cursor = max(t.cursor, 0)
	t.ensureCursorVisible()
}

// PageBackwardFull moves the cursor backward by a full page.
func (t *TableModel) PageBackwardFull() {
	t.cursor = max(t.cursor-t.effectiveVisibleCount(), 0)
	t.ensureCursorVisible()
}

// JumpToTop moves the cursor to the first row.
func (t *TableModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *TableModel) JumpToBottom() {
	t.cursor = max(len(t.visible)-1, 0)
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the nearest shallower row above it.
func (t *TableModel) JumpToParent() bool {
	i := t.SelectedIndex()
	seq := t.Sequence()
	if i <= 0 {
		return false
	}
	d := seq.Depth(i)
	for j := range seq.Backward(i - 1) {
		if seq.Depth(j) < d {
			return t.Select(j)
		}
	}
	return false
}

// NextChanged moves the cursor to the next highlighted row, wrapping around.
func (t *TableModel) NextChanged() bool {
	return t.seekChanged(1)
}

// PrevChanged moves the cursor to the previous highlighted row, wrapping around.
func (t *TableModel) PrevChanged() bool {
	return t.seekChanged(-1)
}

func (t *TableModel) seekChanged(step int) bool {
	n := len(t.visible)
	seq := t.Sequence()
	for k := 1; k <= n; k++ {
		pos := ((t.cursor+step*k)%n + n) % n
		if seq.IsHighlighted(t.visible[pos]) {
			t.cursor = pos
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// View renders the header, the rows in the viewport and, when the rows do
// not fit, a position indicator.
func (t *TableModel) View() string {
	if len(t.visible) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.RenderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	seq := t.Sequence()
	for pos := start; pos < end; pos++ {
		i := t.visible[pos]
		line := t.renderRow(seq, i)
		if pos == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(t.visible) > t.effectiveVisibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderHeader returns the column header row on a primary background.
func (t *TableModel) RenderHeader() string {
	labelWidth := t.labelWidth()
	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(fit(t.header(0), labelWidth))
	for c := 1; c < len(t.headers); c++ {
		sb.WriteString(" ")
		sb.WriteString(fit(t.header(c), cellWidth))
	}
	return t.theme.Renderer.NewStyle().
		Background(t.theme.Primary).
		Foreground(ColorBg).
		Bold(true).
		Width(t.viewWidth()).
		Render(sb.String())
}

func (t *TableModel) header(c int) string {
	if c < len(t.headers) {
		return t.headers[c]
	}
	return ""
}

// renderRow lays out glyph, indented label and cells 1..n. Designated cells
// carrying a marker get the changed style.
func (t *TableModel) renderRow(seq *hierarchy.Sequence, i int) string {
	r := seq.Row(i)
	indent := strings.Repeat(" ", r.Depth*t.indentWidth)
	glyph := t.theme.GlyphText.Render(r.Glyph().Symbol())

	labelWidth := t.labelWidth() - len(indent)
	label := fit(r.Label, max(labelWidth, 1))
	switch {
	case r.SectionHeader:
		label = t.theme.SectionText.Render(label)
	case seq.IsHighlighted(i):
		label = t.theme.ChangedLabel.Render(label)
	default:
		label = t.theme.Base.Render(label)
	}

	var sb strings.Builder
	sb.WriteString(glyph)
	sb.WriteString(" ")
	sb.WriteString(indent)
	sb.WriteString(label)
	if r.SectionHeader {
		return sb.String()
	}

	designated := make(map[int]bool)
	for _, c := range seq.HighlightColumns() {
		designated[c] = true
	}
	for c := 1; c < len(t.headers); c++ {
		text := fit(formatCell(r.CellText(c)), cellWidth)
		style := t.theme.CellText
		if designated[c] && r.CellHighlighted(c) {
			style = t.theme.ChangedCell
		}
		sb.WriteString(" ")
		sb.WriteString(style.Render(text))
	}
	return sb.String()
}

func (t *TableModel) viewWidth() int {
	if t.width <= 0 {
		return 80
	}
	return t.width
}

// labelWidth is what remains after the glyph and the cell columns.
func (t *TableModel) labelWidth() int {
	cells := max(len(t.headers)-1, 0)
	w := t.viewWidth() - 2 - cells*(cellWidth+1)
	return max(w, minLabelWidth)
}

// renderPositionIndicator renders "Page X/Y (start-end of total)" using
// 1-indexed numbers.
func (t *TableModel) renderPositionIndicator(start, end int) string {
	total := len(t.visible)
	pageSize := t.effectiveVisibleCount()
	currentPage, totalPages := t.pageInfo(pageSize)

	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", currentPage, totalPages, start+1, end, total)
	return t.theme.MutedText.Render(indicator)
}

func (t *TableModel) pageInfo(pageSize int) (currentPage, totalPages int) {
	total := len(t.visible)
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages = max((total+pageSize-1)/pageSize, 1)
	currentPage = min(t.viewportOffset/pageSize+1, totalPages)
	return currentPage, totalPages
}

func (t *TableModel) renderEmptyState() string {
	var sb strings.Builder
	sb.WriteString(t.theme.SectionText.Render("Nothing to show"))
	sb.WriteString("\n\n")
	if t.FilterActive() {
		sb.WriteString(t.theme.MutedText.Render("No rows changed since the cutoff. Press f to show all rows."))
	} else {
		sb.WriteString(t.theme.MutedText.Render("The report has no rows."))
	}
	return sb.String()
}

// visibleRange returns the [start, end) window of visible positions.
func (t *TableModel) visibleRange() (start, end int) {
	if len(t.visible) == 0 {
		return 0, 0
	}
	count := t.effectiveVisibleCount()
	start = max(t.viewportOffset, 0)
	end = start + count
	if end > len(t.visible) {
		end = len(t.visible)
		start = max(end-count, 0)
	}
	return start, end
}

// effectiveVisibleCount reserves one line for the header and, when
// scrolling, one for the position indicator.
func (t *TableModel) effectiveVisibleCount() int {
	count := t.height - 1
	if count <= 0 {
		count = defaultVisible
	}
	if len(t.visible) > count {
		count--
	}
	return max(count, 1)
}

// ensureCursorVisible scrolls just enough to keep the cursor in view.
func (t *TableModel) ensureCursorVisible() {
	if len(t.visible) == 0 {
		t.viewportOffset = 0
		return
	}
	count := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+count {
		t.viewportOffset = t.cursor - count + 1
	}
	t.viewportOffset = max(min(t.viewportOffset, len(t.visible)-count), 0)
}
