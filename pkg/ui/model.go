package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/loader"
	"github.com/vanderheijden86/changetree/pkg/metrics"
	"github.com/vanderheijden86/changetree/pkg/watcher"
)

// FileChangedMsg is sent when the report file changes on disk
type FileChangedMsg struct{}

// ReloadedMsg carries the result of re-reading the report.
type ReloadedMsg struct {
	Doc *loader.Document
	Err error
}

// ReadyTimeoutMsg is sent after a short delay so the first frame renders
// even before a WindowSizeMsg arrives.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ModelOptions configure the viewer.
type ModelOptions struct {
	// OnlyHighlighted starts with the highlight filter on.
	OnlyHighlighted bool
	// IndentWidth is the number of columns per depth level; 0 keeps the default.
	IndentWidth int
	// Headers label the label column and the cells after it.
	Headers []string
	// Watcher, when set, triggers a reload on every file change.
	Watcher *watcher.Watcher
	// Reload re-reads the report. Without it the r key and file changes do nothing.
	Reload func() (*loader.Document, error)
	// Copy writes to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
	Theme *Theme
}

// Model is the interactive report viewer.
type Model struct {
	doc   *loader.Document
	table TableModel
	theme Theme

	keys     KeyMap
	help     help.Model
	showHelp bool

	watcher *watcher.Watcher
	reload  func() (*loader.Document, error)
	copy    func(string) error

	width, height int
	ready         bool

	statusMsg     string
	statusIsError bool
	reloads       int
}

// NewModel creates a viewer over doc.
func NewModel(doc *loader.Document, opts ModelOptions) Model {
	theme := TestTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	m := Model{
		doc:     doc,
		table:   NewTableModel(doc.Sequence, theme),
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		watcher: opts.Watcher,
		reload:  opts.Reload,
		copy:    opts.Copy,
	}
	if m.copy == nil {
		m.copy = clipboard.WriteAll
	}
	if opts.IndentWidth > 0 {
		m.table.SetIndentWidth(opts.IndentWidth)
	}
	m.table.SetHeaders(opts.Headers)
	if opts.OnlyHighlighted {
		m.table.ToggleFilter()
	}
	return m
}

// Table exposes the table for inspection.
func (m Model) Table() *TableModel {
	return &m.table
}

// Status returns the current status line message.
func (m Model) Status() (string, bool) {
	return m.statusMsg, m.statusIsError
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case ReadyTimeoutMsg:
		m.ready = true
		return m, nil

	case FileChangedMsg:
		debug.Log("report changed on disk, reloading")
		var cmds []tea.Cmd
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		if cmd := m.reloadCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if len(cmds) == 0 {
			return m, nil
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		m.applyReload(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg, m.statusIsError = "", false
	t := &m.table
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize()
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		t.PageBackwardFull()
	case key.Matches(msg, m.keys.PageDown):
		t.PageForwardFull()
	case key.Matches(msg, m.keys.Top):
		t.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, m.keys.Parent):
		t.JumpToParent()
	case key.Matches(msg, m.keys.Toggle):
		t.ToggleSelected()
	case key.Matches(msg, m.keys.ExpandAll):
		t.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		t.CollapseAll()
	case key.Matches(msg, m.keys.Filter):
		t.ToggleFilter()
	case key.Matches(msg, m.keys.NextChanged):
		if !t.NextChanged() {
			m.statusMsg = "No changed rows"
		}
	case key.Matches(msg, m.keys.PrevChanged):
		if !t.PrevChanged() {
			m.statusMsg = "No changed rows"
		}
	case key.Matches(msg, m.keys.CopyID):
		m.copySelected()
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	}
	return m, nil
}

func (m *Model) copySelected() {
	r := m.table.SelectedRow()
	if r == nil || r.RecordID == "" {
		m.statusMsg, m.statusIsError = "Selected row has no record id", true
		return
	}
	if err := m.copy(r.RecordID); err != nil {
		m.statusMsg, m.statusIsError = fmt.Sprintf("Copy failed: %v", err), true
		return
	}
	m.statusMsg = fmt.Sprintf("Copied %s", r.RecordID)
}

func (m Model) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	reload := m.reload
	return func() tea.Msg {
		doc, err := reload()
		return ReloadedMsg{Doc: doc, Err: err}
	}
}

// applyReload swaps in the new sequence and puts the cursor back on the same
// record, matched by record id and then by label.
func (m *Model) applyReload(msg ReloadedMsg) {
	if msg.Err != nil {
		m.statusMsg, m.statusIsError = fmt.Sprintf("Reload failed: %v", msg.Err), true
		return
	}
	if msg.Doc == nil || msg.Doc.Sequence == nil {
		return
	}
	prev := m.table.SelectedRow()
	m.doc = msg.Doc
	m.table.Reset(msg.Doc.Sequence)
	if prev != nil {
		seq := msg.Doc.Sequence
		for i, r := range seq.Forward(0) {
			if (prev.RecordID != "" && r.RecordID == prev.RecordID) ||
				(prev.RecordID == "" && r.Label == prev.Label) {
				if m.table.Select(i) {
					break
				}
			}
		}
	}
	m.reloads++
	m.statusMsg = fmt.Sprintf("Reloaded %d rows", msg.Doc.Sequence.Len())
}

func (m *Model) resize() {
	h := m.height - 2 - m.helpHeight()
	m.table.SetSize(m.width, max(h, 1))
}

func (m Model) helpHeight() int {
	if m.showHelp {
		return len(m.keys.FullHelp()[0]) + 1
	}
	return 1
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	defer metrics.Timer(metrics.UIRender)()

	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) renderTitle() string {
	title := m.doc.Title()
	if m.doc.Report != nil && m.doc.Report.Cutoff != "" {
		title += " · changes since " + m.doc.Report.Cutoff
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.theme.Header.Width(width).Render(truncate(title, max(width-2, 1)))
}

func (m Model) renderStatusBar() string {
	seq := m.table.Sequence()
	counts := fmt.Sprintf(" %d of %d rows · %d changed ", m.table.VisibleCount(), seq.Len(), seq.HighlightedCount())

	var sb strings.Builder
	sb.WriteString(RenderFilterBadge(m.table.FilterActive()))
	sb.WriteString(m.theme.StatusBar.Render(counts))
	if m.watcher != nil && m.watcher.IsPolling() {
		sb.WriteString(m.theme.MutedText.Render(" polling "))
	}
	if m.statusMsg != "" {
		style := m.theme.MutedText
		if m.statusIsError {
			style = m.theme.ErrorText
		}
		sb.WriteString(" ")
		sb.WriteString(style.Render(m.statusMsg))
	}
	return sb.String()
}
