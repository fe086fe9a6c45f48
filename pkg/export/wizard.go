package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/changetree/pkg/config"
)

// WizardConfig holds the answers of the export wizard. The last answers
// are saved and offered again on the next run.
type WizardConfig struct {
	Format      Format `json:"format"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	OnlyVisible bool   `json:"only_visible"`
}

// Wizard walks the user through an export.
type Wizard struct {
	config    *WizardConfig
	outputDir string
	savePath  string
}

// NewWizard seeds the form with defaults; outputDir is used to suggest a
// file name.
func NewWizard(defaults WizardConfig, outputDir string) *Wizard {
	cfg := defaults
	if cfg.Format == "" {
		cfg.Format = FormatHTML
	}
	return &Wizard{config: &cfg, outputDir: outputDir, savePath: WizardConfigPath()}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks for the export settings and remembers them.
func (w *Wizard) Run() (*WizardConfig, error) {
	if saved, err := LoadWizardConfig(w.savePath); err == nil && saved != nil && saved.Path != "" {
		reuse, err := w.offerSaved(saved)
		if err != nil {
			return nil, err
		}
		if reuse {
			w.config = saved
			return w.config, nil
		}
	}

	if err := w.collect(); err != nil {
		return nil, err
	}
	if err := SaveWizardConfig(w.savePath, w.config); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save wizard settings: %v\n", err)
	}
	return w.config, nil
}

func (w *Wizard) offerSaved(saved *WizardConfig) (bool, error) {
	fmt.Println("Previous export settings:")
	fmt.Printf("  Format: %s\n", saved.Format)
	fmt.Printf("  Path:   %s\n", saved.Path)
	fmt.Println("")

	reuse := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export again with these settings?").
				Value(&reuse).
				Affirmative("Yes").
				Negative("No, reconfigure"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return reuse, nil
}

func (w *Wizard) collect() error {
	options := make([]huh.Option[Format], 0, len(Formats()))
	for _, f := range Formats() {
		options = append(options, huh.NewOption(formatLabel(f), f))
	}

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[Format]().
				Title("Export format").
				Options(options...).
				Value(&w.config.Format),
			huh.NewConfirm().
				Title("Only rows currently shown?").
				Description("Hidden rows are dropped; SQLite snapshots always keep every row").
				Value(&w.config.OnlyVisible),
			huh.NewInput().
				Title("Document title").
				Value(&w.config.Title),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if w.config.Path == "" || !strings.EqualFold(filepath.Ext(w.config.Path), w.config.Format.Extension()) {
		w.config.Path = DefaultOutputPath(w.outputDir, w.config.Title, w.config.Format)
	}
	pathForm := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&w.config.Path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("output path is required")
					}
					return nil
				}),
		),
	)
	return pathForm.Run()
}

func formatLabel(f Format) string {
	switch f {
	case FormatHTML:
		return "HTML page"
	case FormatMarkdown:
		return "Markdown outline"
	case FormatXLSX:
		return "Excel workbook (grouped rows)"
	case FormatSVG:
		return "SVG image"
	case FormatSQLite:
		return "SQLite snapshot (reopen with ct view)"
	default:
		return string(f)
	}
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// DefaultOutputPath suggests dir/<slug of title>.<ext>.
func DefaultOutputPath(dir, title string, format Format) string {
	slug := strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "catalog-changes"
	}
	return filepath.Join(dir, slug+format.Extension())
}

// WizardConfigPath is where the last answers are kept.
func WizardConfigPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig returns nil, nil when nothing has been saved yet.
func LoadWizardConfig(path string) (*WizardConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("could not determine wizard settings path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig stores cfg at path.
func SaveWizardConfig(path string, cfg *WizardConfig) error {
	if path == "" {
		return fmt.Errorf("could not determine wizard settings path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
