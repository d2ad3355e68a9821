package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/esnya/ResoBotGW/internal/scenario"
	"github.com/esnya/ResoBotGW/internal/tui/styles"
)

const handoff = `
name: handoff
start_ms: 0
ticks:
  - proposals:
      - {agent: planner, kind: narrate, resources: [speech], tier: planner, hold_ms: 500}
      - {agent: chat, kind: reply, resources: [speech], tier: activity, hold_ms: 200}
  - advance_ms: 10
    proposals:
      - {agent: reflex, kind: yelp, resources: [speech, head], tier: reflex, hold_ms: 50}
  - advance_ms: 100
`

func replay(t *testing.T, src string) []scenario.TickResult {
	t.Helper()
	sc, err := scenario.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	results, err := scenario.Run(context.Background(), sc, scenario.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return results
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel("handoff.yaml", NewRenderer(styles.ThemePlain))
	return update(t, m, ReplayMsg{Name: "handoff", Results: replay(t, handoff)})
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"start", nil, 0},
		{"next", []tea.KeyMsg{runeKey('l')}, 1},
		{"arrow", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyRight}}, 2},
		{"clamped at end", []tea.KeyMsg{runeKey('G'), runeKey('n')}, 2},
		{"clamped at start", []tea.KeyMsg{runeKey('h')}, 0},
		{"back", []tea.KeyMsg{runeKey('G'), {Type: tea.KeyLeft}}, 1},
		{"first", []tea.KeyMsg{runeKey('G'), runeKey('g')}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedModel(t)
			for _, k := range tt.keys {
				m = update(t, m, k)
			}
			if m.Index() != tt.want {
				t.Errorf("Index() = %d, want %d", m.Index(), tt.want)
			}
		})
	}
}

func TestModel_Quit(t *testing.T) {
	m := loadedModel(t)
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if v := next.(Model).View(); v != "" {
		t.Errorf("View() after quit = %q", v)
	}
}

func TestModel_ReplayKeepsPosition(t *testing.T) {
	m := loadedModel(t)
	m = update(t, m, runeKey('G'))

	// A shorter replay pulls the cursor back in range.
	short := replay(t, "ticks:\n  - proposals: []\n")
	m = update(t, m, ReplayMsg{Results: short})
	if m.Index() != 0 {
		t.Errorf("Index() = %d after shorter replay", m.Index())
	}
	if m.Reloads() != 2 {
		t.Errorf("Reloads() = %d", m.Reloads())
	}
}

func TestModel_ReplayError(t *testing.T) {
	m := loadedModel(t)
	m = update(t, m, runeKey('l'))
	m = update(t, m, ReplayMsg{Err: errors.New("tick 3: unknown tier")})

	if m.Err() == nil {
		t.Fatal("Err() should be set")
	}
	if m.Index() != 1 {
		t.Errorf("failed replay moved cursor to %d", m.Index())
	}
	view := m.View()
	if !strings.Contains(view, "unknown tier") {
		t.Errorf("error missing from view:\n%s", view)
	}
	if !strings.Contains(view, "tick 1") {
		t.Errorf("last good tick missing from view:\n%s", view)
	}

	m = update(t, m, ReplayMsg{Name: "handoff", Results: replay(t, handoff)})
	if m.Err() != nil {
		t.Errorf("Err() = %v after good replay", m.Err())
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel("handoff.yaml", NewRenderer(styles.ThemePlain))
	if v := m.View(); !strings.Contains(v, "Loading...") {
		t.Errorf("empty view = %q", v)
	}

	m = loadedModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, runeKey('l'))
	view := m.View()

	for _, want := range []string{"handoff", "tick 1", "2/3", "preempted", "reflex/yelp", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := loadedModel(t)
	if strings.Contains(m.View(), "first") {
		t.Error("short help should not list the first binding")
	}
	m = update(t, m, runeKey('?'))
	if !strings.Contains(m.View(), "first") {
		t.Error("full help should list the first binding")
	}
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte(handoff), 0644); err != nil {
		t.Fatal(err)
	}
	msg := Replay(context.Background(), good, nil)
	if msg.Err != nil || msg.Name != "handoff" || len(msg.Results) != 3 {
		t.Errorf("Replay = %+v", msg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("ticks:\n  - {at_ms: 1, advance_ms: 1}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if msg := Replay(context.Background(), bad, nil); msg.Err == nil {
		t.Error("expected error for invalid scenario")
	}
}
