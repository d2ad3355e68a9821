package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeNord    ThemeName = "nord"    // Nord theme - cool blue-gray
	ThemePlain   ThemeName = "plain"   // No colors, for pipes and dumb terminals
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{string(ThemeDefault), string(ThemeNord), string(ThemePlain)}
}

// IsValidTheme checks if a theme name is valid.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color

	// One color per tier, highest priority first.
	TierReflex   lipgloss.Color
	TierSafety   lipgloss.Color
	TierActivity lipgloss.Color
	TierPlanner  lipgloss.Color
}

// DefaultPalette returns the purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary: lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Success: lipgloss.Color("#10B981"), // Green
		Warning: lipgloss.Color("#F59E0B"), // Amber
		Error:   lipgloss.Color("#F87171"), // Red (red-400)
		Muted:   lipgloss.Color("#9CA3AF"), // Gray
		Text:    lipgloss.Color("#F9FAFB"), // Light text
		Border:  lipgloss.Color("#6B7280"), // Gray-500

		TierReflex:   lipgloss.Color("#F87171"), // Red
		TierSafety:   lipgloss.Color("#FB923C"), // Orange
		TierActivity: lipgloss.Color("#60A5FA"), // Blue
		TierPlanner:  lipgloss.Color("#A78BFA"), // Purple
	}
}

// NordPalette returns the Nord palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary: lipgloss.Color("#88C0D0"), // nord8
		Success: lipgloss.Color("#A3BE8C"), // nord14
		Warning: lipgloss.Color("#EBCB8B"), // nord13
		Error:   lipgloss.Color("#BF616A"), // nord11
		Muted:   lipgloss.Color("#7B88A1"),
		Text:    lipgloss.Color("#ECEFF4"), // nord6
		Border:  lipgloss.Color("#4C566A"), // nord3

		TierReflex:   lipgloss.Color("#BF616A"),
		TierSafety:   lipgloss.Color("#D08770"), // nord12
		TierActivity: lipgloss.Color("#81A1C1"), // nord9
		TierPlanner:  lipgloss.Color("#B48EAD"), // nord15
	}
}

// PaletteFor returns the palette for name, or nil for ThemePlain. Unknown
// names get the default palette.
func PaletteFor(name ThemeName) *ColorPalette {
	switch name {
	case ThemePlain:
		return nil
	case ThemeNord:
		return NordPalette()
	default:
		return DefaultPalette()
	}
}
