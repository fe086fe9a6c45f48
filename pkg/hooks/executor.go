package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/changetree/pkg/debug"
)

// maxStderrInSummary bounds the stderr excerpt per failed hook.
const maxStderrInSummary = 200

// HookResult records one hook execution.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Error    error
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs the hooks of one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

// NewExecutor creates an executor for config and the given export.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// SetContext updates the export details, e.g. once the row count is known.
func (e *Executor) SetContext(ctx ExportContext) {
	e.context = ctx
}

// RunPreExport runs the pre-export hooks and stops at the first failing
// hook whose on_error is "fail".
func (e *Executor) RunPreExport() error {
	return e.runPhase(PreExport, e.config.Hooks.PreExport, true)
}

// RunPostExport runs every post-export hook and returns the first failure of
// a hook whose on_error is "fail".
func (e *Executor) RunPostExport() error {
	return e.runPhase(PostExport, e.config.Hooks.PostExport, false)
}

func (e *Executor) runPhase(phase HookPhase, hooks []Hook, stopOnFail bool) error {
	var firstErr error
	for _, hook := range hooks {
		res := e.run(phase, hook)
		e.results = append(e.results, res)
		if res.Success || !hook.Fatal() {
			continue
		}
		err := fmt.Errorf("%s hook %q failed: %w", phase, hook.Name, res.Error)
		if stopOnFail {
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Executor) run(phase HookPhase, hook Hook) HookResult {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", hook.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	// Children of sh may keep the pipes open after a timeout kill.
	cmd.WaitDelay = 500 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := HookResult{
		Hook:     hook,
		Phase:    phase,
		Duration: time.Since(start),
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %v", timeout)
	}
	res.Error = err
	res.Success = err == nil
	debug.Log("hook %s (%s): success=%v in %v", hook.Name, phase, res.Success, res.Duration)
	return res
}

// Results returns the results of every hook run so far.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary describes the hook runs, with a stderr excerpt per failure.
// It is empty when no hook ran.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	succeeded, failed := 0, 0
	for _, r := range e.results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed\n", succeeded, failed)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "  ✗ %s (%s): %v\n", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "    stderr: %s\n", truncate(r.Stderr, maxStderrInSummary))
		}
	}
	return sb.String()
}

// RunHooks loads the hooks of projectDir. It returns a nil executor when
// noHooks is set or nothing is configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
