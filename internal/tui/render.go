package tui

import (
	"fmt"
	"strings"

	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/scenario"
	"github.com/esnya/ResoBotGW/internal/tui/styles"
)

// Renderer formats replayed ticks as text.
type Renderer struct {
	styles styles.Styles
}

// NewRenderer creates a Renderer for the given theme. ThemePlain produces
// output without escape sequences.
func NewRenderer(theme styles.ThemeName) Renderer {
	return Renderer{styles: styles.New(styles.PaletteFor(theme))}
}

// Styles returns the renderer's styles.
func (r Renderer) Styles() styles.Styles { return r.styles }

// Tick renders one tick: what was committed, rejected, expired and
// preempted, followed by the lock table.
func (r Renderer) Tick(res scenario.TickResult) string {
	s := r.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(fmt.Sprintf("tick %d", res.Index)))
	b.WriteString(" ")
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("@ %dms", res.AtMs)))
	b.WriteString("\n")

	rep := res.Report
	for _, l := range rep.Expired {
		b.WriteString(s.Expired.Render("  expired   " + l.String()))
		b.WriteString("\n")
	}
	for _, p := range rep.Preempted {
		b.WriteString(s.Preempted.Render(fmt.Sprintf("  preempted %s by %s/%s", p.Lock, p.By.Agent(), p.By.Kind())))
		b.WriteString("\n")
	}
	for _, in := range rep.Committed {
		b.WriteString(s.Committed.Render("  commit    "))
		b.WriteString(r.intent(in))
		b.WriteString("\n")
	}
	for _, rej := range rep.Rejected {
		reason := string(rej.Reason)
		if rej.Resource != "" {
			reason += " on " + string(rej.Resource)
		}
		b.WriteString(s.Rejected.Render("  reject    "))
		b.WriteString(r.intent(rej.Intent))
		b.WriteString(s.Muted.Render(fmt.Sprintf("  %s (%s)", reason, rej.Blocker)))
		b.WriteString("\n")
	}
	if len(rep.Committed)+len(rep.Rejected) == 0 {
		b.WriteString(s.Muted.Render("  no proposals"))
		b.WriteString("\n")
	}

	b.WriteString(r.Locks(res))
	return b.String()
}

// Locks renders the lock table after a tick.
func (r Renderer) Locks(res scenario.TickResult) string {
	s := r.styles
	if len(res.Locks) == 0 {
		return s.Muted.Render("  locks: none") + "\n"
	}
	var b strings.Builder
	b.WriteString(s.Muted.Render("  locks:"))
	b.WriteString("\n")
	for _, l := range res.Locks {
		b.WriteString("    ")
		b.WriteString(s.Lock.Render(fmt.Sprintf("%-10s %-12s", l.Resource, l.Holder)))
		b.WriteString(" ")
		b.WriteString(s.Tier(l.Tier).Render(l.Tier.String()))
		b.WriteString(s.Muted.Render(fmt.Sprintf(" until %d (+%dms)", l.UntilMs, l.UntilMs-res.AtMs)))
		b.WriteString("\n")
	}
	return b.String()
}

func (r Renderer) intent(in intent.Intent) string {
	return fmt.Sprintf("%s/%s %s %s",
		in.Agent(), in.Kind(),
		r.styles.Tier(in.Tier()).Render(in.Tier().String()),
		resourceList(in.Resources()))
}

func resourceList(rs []intent.Resource) string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r)
	}
	return "[" + strings.Join(names, ",") + "]"
}

// Summary renders totals over a whole replay.
func (r Renderer) Summary(name string, results []scenario.TickResult) string {
	var committed, rejected, preempted int
	for _, res := range results {
		committed += len(res.Report.Committed)
		rejected += len(res.Report.Rejected)
		preempted += len(res.Report.Preempted)
	}
	if name == "" {
		name = "scenario"
	}
	return r.styles.Title.Render(name) + " " + r.styles.Muted.Render(fmt.Sprintf(
		"%d ticks, %d committed, %d rejected, %d preempted",
		len(results), committed, rejected, preempted)) + "\n"
}
