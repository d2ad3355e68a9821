package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// fitWidth truncates every line of s to width visual columns, keeping
// escape sequences intact. A non-positive width leaves s unchanged.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = truncateANSI(line, width)
	}
	return strings.Join(lines, "\n")
}

// truncateANSI truncates s to maxWidth columns, ending with "…" when cut.
func truncateANSI(s string, maxWidth int) string {
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}
	return ansi.Truncate(s, maxWidth, "…")
}
