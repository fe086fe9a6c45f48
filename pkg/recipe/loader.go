package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/changetree/pkg/config"
)

// ProjectFile is the project recipe file, relative to the project directory.
const ProjectFile = ".ct/recipes.yaml"

func intPtr(n int) *int { return &n }

// builtins are always available unless disabled with "name: null".
var builtins = map[string]Recipe{
	"default": {
		Description: "Every row, report cutoff",
	},
	"changed": {
		Description:     "Only changed rows and their context, report cutoff",
		OnlyHighlighted: true,
	},
	"recent": {
		Description:     "Changed in the last 7 days",
		Since:           "7d",
		OnlyHighlighted: true,
	},
	"month": {
		Description:     "Changed in the last month",
		Since:           "1m",
		OnlyHighlighted: true,
	},
	"outline": {
		Description:   "Top level only; expand what you need",
		CollapseDepth: intPtr(0),
	},
	"sections": {
		Description:   "Sections and their direct children",
		CollapseDepth: intPtr(1),
	},
}

// recipeFile is the on-disk layout. A nil entry disables a recipe.
type recipeFile struct {
	Recipes map[string]*Recipe `yaml:"recipes"`
}

// Loader merges builtin, user and project recipes, later sources winning.
type Loader struct {
	userPath   string
	projectDir string

	recipes  map[string]*Recipe
	sources  map[string]string
	warnings []string
}

// LoaderOption configures the loader
type LoaderOption func(*Loader)

// WithUserPath sets the user recipe file; empty disables it.
func WithUserPath(path string) LoaderOption {
	return func(l *Loader) {
		l.userPath = path
	}
}

// WithProjectDir sets the project directory; empty disables project recipes.
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.projectDir = dir
	}
}

// NewLoader creates a loader reading the user config directory and the
// current directory unless overridden.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{userPath: defaultUserPath()}
	l.projectDir, _ = os.Getwd()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func defaultUserPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "recipes.yaml")
}

// Load merges all sources. Missing files are fine; unreadable or invalid
// ones become warnings so the builtins stay usable.
func (l *Loader) Load() error {
	l.recipes = make(map[string]*Recipe, len(builtins))
	l.sources = make(map[string]string, len(builtins))
	l.warnings = nil

	for name, r := range builtins {
		r.Name = name
		l.recipes[name] = &r
		l.sources[name] = "builtin"
	}
	if l.userPath != "" {
		l.merge(l.userPath, "user")
	}
	if l.projectDir != "" {
		l.merge(filepath.Join(l.projectDir, ProjectFile), "project")
	}
	return nil
}

func (l *Loader) merge(path, source string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.warnings = append(l.warnings, fmt.Sprintf("reading %s: %v", path, err))
		}
		return
	}

	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		l.warnings = append(l.warnings, fmt.Sprintf("parsing %s: %v", path, err))
		return
	}
	for name, r := range file.Recipes {
		if r == nil {
			delete(l.recipes, name)
			delete(l.sources, name)
			continue
		}
		if r.CollapseDepth != nil && *r.CollapseDepth < 0 {
			l.warnings = append(l.warnings, fmt.Sprintf("%s: recipe %q has a negative collapse_depth; ignoring it", path, name))
			r.CollapseDepth = nil
		}
		r.Name = name
		l.recipes[name] = r
		l.sources[name] = source
	}
}

// Get returns the recipe called name, or nil.
func (l *Loader) Get(name string) *Recipe {
	return l.recipes[name]
}

// Source reports where a recipe came from: builtin, user or project.
func (l *Loader) Source(name string) string {
	return l.sources[name]
}

// Names returns the recipe names in sorted order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.recipes))
	for name := range l.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the recipes sorted by name.
func (l *Loader) List() []*Recipe {
	out := make([]*Recipe, 0, len(l.recipes))
	for _, name := range l.Names() {
		out = append(out, l.recipes[name])
	}
	return out
}

// ListSummaries returns name, description and source of every recipe.
func (l *Loader) ListSummaries() []Summary {
	out := make([]Summary, 0, len(l.recipes))
	for _, r := range l.List() {
		out = append(out, Summary{Name: r.Name, Description: r.Description, Source: l.sources[r.Name]})
	}
	return out
}

// Warnings returns problems found while loading.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault creates a loader with the default locations and loads it.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}
