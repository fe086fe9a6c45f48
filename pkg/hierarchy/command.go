package hierarchy

import (
	"fmt"
	"time"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/metrics"
)

// Command is one user action applied to a Sequence. Commands run to
// completion synchronously; there is no cancellation.
type Command interface {
	Apply(s *Sequence)
	String() string
}

// ToggleCommand collapses or expands the row at Index.
type ToggleCommand struct {
	Index int
}

// Apply implements Command.
func (c ToggleCommand) Apply(s *Sequence) {
	defer metrics.Timer(metrics.Toggle)()
	s.ToggleAt(c.Index)
}

func (c ToggleCommand) String() string {
	return fmt.Sprintf("toggle(%d)", c.Index)
}

// FilterCommand switches the highlight filter on or off.
type FilterCommand struct {
	Active bool
}

// Apply implements Command.
func (c FilterCommand) Apply(s *Sequence) {
	defer metrics.Timer(metrics.HighlightFilter)()
	s.ApplyHighlightFilter(c.Active)
}

func (c FilterCommand) String() string {
	return fmt.Sprintf("filter(%t)", c.Active)
}

// Dispatcher applies commands to one Sequence and tracks the filter state
// the user last chose. It belongs to a single event loop and does no
// locking.
type Dispatcher struct {
	seq          *Sequence
	filterActive bool
	applied      int
}

// NewDispatcher creates a dispatcher for seq.
func NewDispatcher(seq *Sequence) *Dispatcher {
	return &Dispatcher{seq: seq}
}

// Sequence returns the sequence commands are applied to.
func (d *Dispatcher) Sequence() *Sequence {
	return d.seq
}

// Reset points the dispatcher at a freshly loaded sequence and re-applies the
// current filter state to it.
func (d *Dispatcher) Reset(seq *Sequence) {
	d.seq = seq
	if d.filterActive {
		d.Dispatch(FilterCommand{Active: true})
	}
}

// FilterActive reports whether the highlight filter is on.
func (d *Dispatcher) FilterActive() bool {
	return d.filterActive
}

// Applied returns the number of commands dispatched so far.
func (d *Dispatcher) Applied() int {
	return d.applied
}

// Dispatch applies cmd to the sequence.
func (d *Dispatcher) Dispatch(cmd Command) {
	if cmd == nil {
		return
	}
	if f, ok := cmd.(FilterCommand); ok {
		d.filterActive = f.Active
	}
	start := time.Now()
	cmd.Apply(d.seq)
	d.applied++
	if debug.Enabled() {
		debug.Log("%s applied in %v (%d/%d rows visible)",
			cmd, time.Since(start), len(d.seq.VisibleIndices()), d.seq.Len())
	}
}

// ToggleFilter flips the highlight filter.
func (d *Dispatcher) ToggleFilter() {
	d.Dispatch(FilterCommand{Active: !d.filterActive})
}
