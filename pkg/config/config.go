// Package config handles loading and saving ct configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/ct/config.yaml
//   - State:   ~/.local/state/ct/ (default export directory)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/changetree/pkg/model"
)

// ExportFormats lists the values accepted by export.default_format.
var ExportFormats = []string{"html", "md", "xlsx", "svg", "sqlite"}

// NamedReport is a report path registered under a short name, so
// `ct view catalog` works from anywhere.
type NamedReport struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// HighlightConfig selects which timestamp cells count as changed.
type HighlightConfig struct {
	Cutoff       string `yaml:"cutoff,omitempty"`        // RFC3339 or date; overrides the report cutoff
	LookbackDays int    `yaml:"lookback_days,omitempty"` // cutoff = now - N days when Cutoff is empty
	Columns      []int  `yaml:"columns,omitempty"`       // designated highlight cells (default 1, 2)
}

// Validate implements validation.Validatable.
func (h HighlightConfig) Validate() error {
	err := validation.ValidateStruct(&h,
		validation.Field(&h.Cutoff, validation.By(validTimestamp)),
		validation.Field(&h.LookbackDays, validation.Min(0), validation.Max(3650)),
		validation.Field(&h.Columns, validation.Each(validation.Min(0))),
	)
	if err != nil {
		return err
	}
	if h.Cutoff != "" && h.LookbackDays > 0 {
		return errors.New("cutoff and lookback_days are mutually exclusive")
	}
	return nil
}

// UIConfig holds viewer preferences.
type UIConfig struct {
	OnlyHighlighted bool `yaml:"only_highlighted,omitempty"` // start with the highlight filter on
	IndentWidth     int  `yaml:"indent_width,omitempty"`     // columns per depth level
}

// Validate implements validation.Validatable.
func (u UIConfig) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.IndentWidth, validation.Min(0), validation.Max(8)),
	)
}

// WatchConfig controls live reload.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms,omitempty"`
	ForcePoll  bool `yaml:"force_poll,omitempty"`
}

// Validate implements validation.Validatable.
func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.DebounceMS, validation.Min(0), validation.Max(60000)),
	)
}

// Debounce returns the debounce window, zero meaning the watcher default.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	DefaultFormat string `yaml:"default_format,omitempty"`
	OutputDir     string `yaml:"output_dir,omitempty"`
}

// Validate implements validation.Validatable.
func (e ExportConfig) Validate() error {
	formats := make([]any, len(ExportFormats))
	for i, f := range ExportFormats {
		formats[i] = f
	}
	return validation.ValidateStruct(&e,
		validation.Field(&e.DefaultFormat, validation.In(formats...)),
	)
}

// Config is the top-level configuration for ct.
type Config struct {
	Reports   []NamedReport   `yaml:"reports,omitempty"`
	Highlight HighlightConfig `yaml:"highlight,omitempty"`
	UI        UIConfig        `yaml:"ui,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
	Export    ExportConfig    `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			IndentWidth: 2,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMS: 200,
		},
		Export: ExportConfig{
			DefaultFormat: "html",
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Highlight),
		validation.Field(&c.UI),
		validation.Field(&c.Watch),
		validation.Field(&c.Export),
	)
}

// CutoffTime resolves the configured cutoff relative to now. The zero time
// means "use the report's own cutoff".
func (c Config) CutoffTime(now time.Time) time.Time {
	if t, ok := model.ParseTimestamp(c.Highlight.Cutoff); ok {
		return t
	}
	if c.Highlight.LookbackDays > 0 {
		return now.UTC().AddDate(0, 0, -c.Highlight.LookbackDays)
	}
	return time.Time{}
}

// ConfigDir returns the XDG config directory for ct.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ct")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ct")
}

// StateDir returns the XDG state directory for ct.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ct")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "ct")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Reports {
		cfg.Reports[i].Path = expandHome(cfg.Reports[i].Path)
	}
	cfg.Export.OutputDir = expandHome(cfg.Export.OutputDir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// FindReport returns the report registered under name, or nil.
func (c Config) FindReport(name string) *NamedReport {
	for i := range c.Reports {
		if strings.EqualFold(c.Reports[i].Name, name) {
			return &c.Reports[i]
		}
	}
	return nil
}

// ResolveReport maps a registered name to its path; anything else is
// returned unchanged.
func (c Config) ResolveReport(arg string) string {
	if r := c.FindReport(arg); r != nil {
		return r.ResolvedPath()
	}
	return arg
}

// ResolvedPath returns the report path with ~ expanded.
func (r NamedReport) ResolvedPath() string {
	return expandHome(r.Path)
}

// OutputDir returns the export directory, falling back to the state dir.
func (c Config) OutputDir() string {
	if c.Export.OutputDir != "" {
		return c.Export.OutputDir
	}
	return StateDir()
}

func validTimestamp(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := model.ParseTimestamp(s); !ok {
		return fmt.Errorf("unrecognized timestamp %q", s)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
