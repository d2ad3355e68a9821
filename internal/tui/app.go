package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/esnya/ResoBotGW/internal/logging"
	"github.com/esnya/ResoBotGW/internal/scenario"
)

// Replay loads and replays the scenario at path.
func Replay(ctx context.Context, path string, log *logging.Logger) ReplayMsg {
	sc, err := scenario.Load(path)
	if err != nil {
		return ReplayMsg{Err: err}
	}
	results, err := scenario.Run(ctx, sc, scenario.Options{Logger: log})
	if err != nil {
		return ReplayMsg{Name: sc.Name, Err: err}
	}
	return ReplayMsg{Name: sc.Name, Results: results}
}

// Run starts the stepper for the scenario at path and replays it again on
// every save until the user quits or ctx is done.
func Run(ctx context.Context, path string, r Renderer, log *logging.Logger) error {
	if log == nil {
		log = logging.NopLogger()
	}
	w, err := scenario.NewWatcher(path, scenario.WithWatcherLogger(log))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(w.Path(), r), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		p.Send(Replay(ctx, w.Path(), log))
	}()
	go func() {
		_ = w.Run(ctx, func() {
			log.Debug("scenario changed", "path", w.Path())
			p.Send(Replay(ctx, w.Path(), log))
		})
	}()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
