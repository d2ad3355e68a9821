package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/esnya/ResoBotGW/internal/scenario"
)

// ReplayMsg delivers a fresh replay of the scenario, or the error that
// stopped it.
type ReplayMsg struct {
	Name    string
	Results []scenario.TickResult
	Err     error
}

// Model is the Bubbletea model that steps through a replayed scenario.
type Model struct {
	path     string
	name     string
	results  []scenario.TickResult
	index    int
	err      error
	reloads  int
	width    int
	height   int
	quitting bool

	keys     KeyMap
	help     help.Model
	renderer Renderer
}

// NewModel creates a model for the scenario at path. Results arrive through
// ReplayMsg.
func NewModel(path string, r Renderer) Model {
	h := help.New()
	s := r.Styles()
	h.Styles.ShortKey = s.HelpKey
	h.Styles.ShortDesc = s.HelpDesc
	h.Styles.FullKey = s.HelpKey
	h.Styles.FullDesc = s.HelpDesc

	return Model{
		path:     path,
		keys:     DefaultKeyMap(),
		help:     h,
		renderer: r,
	}
}

// Index returns the tick currently shown.
func (m Model) Index() int { return m.index }

// Reloads returns how many replays the model has received.
func (m Model) Reloads() int { return m.reloads }

// Err returns the error from the latest replay, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ReplayMsg:
		m.reloads++
		m.err = msg.Err
		if msg.Err != nil {
			// Keep showing the last good replay.
			return m, nil
		}
		m.name = msg.Name
		m.results = msg.Results
		m.index = min(m.index, max(len(m.results)-1, 0))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Next):
			if m.index < len(m.results)-1 {
				m.index++
			}
		case key.Matches(msg, m.keys.Prev):
			if m.index > 0 {
				m.index--
			}
		case key.Matches(msg, m.keys.First):
			m.index = 0
		case key.Matches(msg, m.keys.Last):
			m.index = max(len(m.results)-1, 0)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.renderer.Styles()

	var b strings.Builder
	name := m.name
	if name == "" {
		name = m.path
	}
	b.WriteString(s.Title.Render(name))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(m.path))
	b.WriteString("\n\n")

	switch {
	case len(m.results) == 0 && m.err == nil:
		b.WriteString(s.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(m.results) > 0:
		res := m.results[m.index]
		b.WriteString(s.Box.Render(strings.TrimRight(m.renderer.Tick(res), "\n")))
		b.WriteString("\n")
		b.WriteString(s.Muted.Render(fmt.Sprintf("%d/%d", m.index+1, len(m.results))))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(s.Rejected.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return fitWidth(b.String(), m.width)
}
