package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Primary": theme.Primary,
		"Changed": theme.Changed,
		"Muted":   theme.Muted,
		"Border":  theme.Border,
	} {
		if c.Light == "" || c.Dark == "" {
			t.Errorf("%s color is empty", name)
		}
	}
}

func TestThemeBg(t *testing.T) {
	orig := TermProfile
	defer func() { TermProfile = orig }()

	TermProfile = colorprofile.TrueColor
	if _, ok := ThemeBg("#282A36").(lipgloss.Color); !ok {
		t.Error("TrueColor should keep the hex background")
	}
	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeBg("#282A36").(lipgloss.NoColor); !ok {
		t.Error("ANSI256 should drop the background")
	}
}

func TestThemeFg(t *testing.T) {
	orig := TermProfile
	defer func() { TermProfile = orig }()

	TermProfile = colorprofile.ANSI
	if _, ok := ThemeFg("#F8F8F2").(lipgloss.ANSIColor); !ok {
		t.Error("ANSI should fall back to white")
	}
	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeFg("#F8F8F2").(lipgloss.Color); !ok {
		t.Error("ANSI256 should keep the hex foreground")
	}
}

func TestRenderFilterBadge(t *testing.T) {
	if got := RenderFilterBadge(true); got == RenderFilterBadge(false) {
		t.Error("badges should differ")
	}
}
