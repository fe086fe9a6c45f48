package ui

import "github.com/charmbracelet/lipgloss"

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Changed cells: timestamps at or after the cutoff
	ColorChanged   = lipgloss.AdaptiveColor{Light: "#8A5A00", Dark: "#F1FA8C"}
	ColorChangedBg = lipgloss.AdaptiveColor{Light: "#FFF3CD", Dark: "#3D3D1A"}

	ColorSectionBg = lipgloss.AdaptiveColor{Light: "#EEF0F4", Dark: "#303241"}
)

// RenderFilterBadge shows the highlight filter state in the status bar.
func RenderFilterBadge(active bool) string {
	if active {
		return lipgloss.NewStyle().
			Foreground(ColorBg).
			Background(ColorChanged).
			Bold(true).
			Padding(0, 1).
			Render("CHANGED ONLY")
	}
	return lipgloss.NewStyle().
		Foreground(ColorMuted).
		Background(ColorBgSubtle).
		Padding(0, 1).
		Render("ALL ROWS")
}
