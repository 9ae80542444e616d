// Package theme provides the Lip Gloss color palette and reusable styles
// for the mousephone TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Session state colors.
var (
	ColorIdle         = lipgloss.Color("#6b7280")
	ColorConnecting   = lipgloss.Color("#d97706")
	ColorConnected    = lipgloss.Color("#22c55e")
	ColorDisconnected = lipgloss.Color("#4b5563")
	ColorFailed       = lipgloss.Color("#dc2626")
)

// Pointer colors.
var (
	ColorCursor = lipgloss.Color("#f59e0b")
	ColorTarget = lipgloss.Color("#374151")
	ColorGyro   = lipgloss.Color("#a855f7")
	ColorClick  = lipgloss.Color("#3b82f6")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// StateColor returns the color for a session state name as printed by
// session.Kind.String.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "connecting":
		return ColorConnecting
	case "connected":
		return ColorConnected
	case "disconnected":
		return ColorDisconnected
	case "failed":
		return ColorFailed
	default:
		return ColorIdle
	}
}

// StateGlyph returns a Unicode glyph for a session state name.
func StateGlyph(state string) string {
	switch state {
	case "connecting":
		return "◌"
	case "connected":
		return "●"
	case "disconnected":
		return "○"
	case "failed":
		return "✗"
	default:
		return "·"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
