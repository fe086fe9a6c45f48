// Package hooks runs user commands around ct exports. Commands come from
// .ct/hooks.yaml in the project directory and see the export through CT_*
// environment variables.
package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the hooks file, relative to the project directory.
const ConfigFile = ".ct/hooks.yaml"

// DefaultTimeout bounds a hook that sets no timeout of its own.
const DefaultTimeout = 30 * time.Second

// HookPhase names the point of an export at which a hook runs.
type HookPhase string

const (
	// PreExport hooks run before anything is written.
	PreExport HookPhase = "pre-export"
	// PostExport hooks run once the file exists.
	PostExport HookPhase = "post-export"
)

// on_error values. A failing "fail" hook cancels a pending export or fails
// the command after one; a "continue" hook is only reported.
const (
	FailExport = "fail"
	KeepExport = "continue"
)

// defaultOnError is used when a hook leaves on_error empty.
func (p HookPhase) defaultOnError() string {
	if p == PreExport {
		return FailExport
	}
	return KeepExport
}

// Hook is one shell command. Command runs under sh -c; Env values are
// $-expanded against the ct process environment before the hook starts.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Fatal reports whether a failure of h fails the export.
func (h Hook) Fatal() bool {
	return h.OnError == FailExport
}

// Validate implements validation.Validatable.
func (h Hook) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.OnError, validation.In(FailExport, KeepExport)),
		validation.Field(&h.Timeout, validation.Min(time.Duration(0))),
	)
}

// UnmarshalYAML decodes a hook, reading timeout either as a Go duration
// ("90s", "2m") or as bare seconds ("30", "1.5").
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type plain Hook

	fields := *node
	fields.Content = nil
	var timeout *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "timeout" {
			timeout = node.Content[i+1]
			continue
		}
		fields.Content = append(fields.Content, node.Content[i], node.Content[i+1])
	}
	if err := fields.Decode((*plain)(h)); err != nil {
		return err
	}
	if timeout == nil {
		return nil
	}
	d, err := parseTimeout(timeout.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", timeout.Line, err)
	}
	h.Timeout = d
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative timeout %q", s)
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// HooksByPhase is the hooks: block of the file.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// ForPhase returns the hooks of phase, nil for an unknown phase.
func (b HooksByPhase) ForPhase(phase HookPhase) []Hook {
	switch phase {
	case PreExport:
		return b.PreExport
	case PostExport:
		return b.PostExport
	}
	return nil
}

// Config is the parsed hooks file.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return c == nil || len(c.Hooks.PreExport)+len(c.Hooks.PostExport) == 0
}

// ExportContext describes the export to the hook through CT_* variables.
type ExportContext struct {
	ExportPath       string    // CT_EXPORT_PATH
	ExportFormat     string    // CT_EXPORT_FORMAT
	RowCount         int       // CT_ROW_COUNT: rows written
	HighlightedCount int       // CT_HIGHLIGHTED_COUNT
	Timestamp        time.Time // CT_TIMESTAMP, RFC3339 in UTC
}

// ToEnv renders c as KEY=value pairs for exec.Cmd.Env.
func (c ExportContext) ToEnv() []string {
	return []string{
		"CT_EXPORT_PATH=" + c.ExportPath,
		"CT_EXPORT_FORMAT=" + c.ExportFormat,
		"CT_ROW_COUNT=" + strconv.Itoa(c.RowCount),
		"CT_HIGHLIGHTED_COUNT=" + strconv.Itoa(c.HighlightedCount),
		"CT_TIMESTAMP=" + c.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Loader reads ConfigFile from a project directory.
type Loader struct {
	projectDir string
	config     Config
	warnings   []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithProjectDir reads the hooks of dir instead of the working directory.
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.projectDir = dir
	}
}

// NewLoader returns a Loader; call Load before asking for hooks.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Load reads the hooks file. A missing file means no hooks. Hooks with a
// blank command are dropped with a warning; the others get their defaults
// and must then validate.
func (l *Loader) Load() error {
	path := filepath.Join(l.projectDir, ConfigFile)
	l.config = Config{}
	l.warnings = nil

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Hooks.PreExport, err = l.prepare(PreExport, cfg.Hooks.PreExport); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Hooks.PostExport, err = l.prepare(PostExport, cfg.Hooks.PostExport); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	l.config = cfg
	return nil
}

func (l *Loader) prepare(phase HookPhase, hooks []Hook) ([]Hook, error) {
	var kept []Hook
	for i, h := range hooks {
		pos := i + 1
		if strings.TrimSpace(h.Command) == "" {
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, pos))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, pos)
		}
		if h.OnError == "" {
			h.OnError = phase.defaultOnError()
		}
		if h.Timeout == 0 {
			h.Timeout = DefaultTimeout
		}
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("%s hook %q: %w", phase, h.Name, err)
		}
		kept = append(kept, h)
	}
	return kept, nil
}

// Config returns the loaded hooks, empty before Load.
func (l *Loader) Config() *Config {
	cfg := l.config
	return &cfg
}

// HasHooks reports whether Load found at least one hook.
func (l *Loader) HasHooks() bool {
	return !l.config.Empty()
}

// GetHooks returns the hooks of one phase.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	return l.config.Hooks.ForPhase(phase)
}

// Warnings lists the hooks Load skipped.
func (l *Loader) Warnings() []string {
	return l.warnings
}
