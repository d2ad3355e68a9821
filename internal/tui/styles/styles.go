package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/esnya/ResoBotGW/internal/intent"
)

// Styles is the set of lipgloss styles used to render arbitration reports.
// The zero value renders plain text.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Committed lipgloss.Style
	Rejected  lipgloss.Style
	Preempted lipgloss.Style
	Expired   lipgloss.Style
	Muted     lipgloss.Style
	Lock      lipgloss.Style
	Box       lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style

	tiers map[intent.Tier]lipgloss.Style
}

// New builds Styles from a palette. A nil palette gives plain styles.
func New(p *ColorPalette) Styles {
	plain := lipgloss.NewStyle()
	if p == nil {
		return Styles{
			Title: plain, Subtitle: plain, Committed: plain, Rejected: plain,
			Preempted: plain, Expired: plain, Muted: plain, Lock: plain,
			Box: plain, HelpKey: plain, HelpDesc: plain,
		}
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		Committed: lipgloss.NewStyle().Foreground(p.Success),
		Rejected:  lipgloss.NewStyle().Foreground(p.Error),
		Preempted: lipgloss.NewStyle().Foreground(p.Warning),
		Expired:   lipgloss.NewStyle().Foreground(p.Muted),
		Muted:     lipgloss.NewStyle().Foreground(p.Muted),
		Lock:      lipgloss.NewStyle().Foreground(p.Text),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		HelpKey:  lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(p.Muted),

		tiers: map[intent.Tier]lipgloss.Style{
			intent.Reflex:   lipgloss.NewStyle().Foreground(p.TierReflex).Bold(true),
			intent.Safety:   lipgloss.NewStyle().Foreground(p.TierSafety),
			intent.Activity: lipgloss.NewStyle().Foreground(p.TierActivity),
			intent.Planner:  lipgloss.NewStyle().Foreground(p.TierPlanner),
		},
	}
}

// Tier returns the style for a tier label.
func (s Styles) Tier(t intent.Tier) lipgloss.Style {
	if st, ok := s.tiers[t]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
