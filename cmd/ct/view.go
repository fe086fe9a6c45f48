package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/internal/datasource"
	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/loader"
	"github.com/vanderheijden86/changetree/pkg/ui"
	"github.com/vanderheijden86/changetree/pkg/watcher"
)

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [report...]",
		Short: "Open the interactive viewer",
		Long: `Open the interactive viewer. Several reports are merged, each under its own
section. A single report file is watched and reloaded when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd.Context(), args)
		},
	}
}

func (a *app) runView(ctx context.Context, args []string) error {
	doc, paths, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	a.collapseRows(doc.Sequence, -1)

	opts := ui.ModelOptions{
		OnlyHighlighted: a.onlyHighlighted,
		IndentWidth:     a.cfg.UI.IndentWidth,
		Reload: func() (*loader.Document, error) {
			doc, err := datasource.LoadMany(context.Background(), paths, a.loadOptions())
			if err != nil {
				return nil, err
			}
			a.collapseRows(doc.Sequence, -1)
			return doc, nil
		},
	}

	if a.cfg.Watch.Enabled {
		w, err := a.startWatcher(paths)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: live reload disabled: %v\n", err)
		} else if w != nil {
			defer w.Stop()
			opts.Watcher = w
		}
	}

	return runTUIProgram(ui.NewModel(doc, opts))
}

// startWatcher watches a single report file. Merged views are reloaded with
// the r key only.
func (a *app) startWatcher(paths []string) (*watcher.Watcher, error) {
	if len(paths) != 1 {
		debug.Log("watch: %d reports, live reload off", len(paths))
		return nil, nil
	}
	w, err := watcher.NewWatcher(paths[0],
		watcher.WithDebounceDuration(a.cfg.Watch.Debounce()),
		watcher.WithForcePoll(a.cfg.Watch.ForcePoll),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	debug.Log("watch: %s (polling=%v, fs=%s)", w.Path(), w.IsPolling(), w.FilesystemType())
	return w, nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CT_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CT_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
