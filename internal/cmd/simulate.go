package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/esnya/ResoBotGW/internal/logging"
	"github.com/esnya/ResoBotGW/internal/scenario"
	"github.com/esnya/ResoBotGW/internal/tui"
	"github.com/esnya/ResoBotGW/internal/tui/styles"
)

var (
	simulateWatch bool
	simulateJSON  bool
	simulateTheme string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Replay a scenario file and print the arbitration report",
	Long: `Replay a scenario file against a fresh arbiter and print, for every tick,
the committed intents, the rejected intents with their reason, and the lock
table afterwards.

The arbiter's clock follows the tick times in the file, so the output is the
same on every run.

Examples:
  resobot-gw simulate scenarios/preemption.yaml
  resobot-gw simulate --json scenarios/preemption.yaml | jq '.ticks[1]'
  resobot-gw simulate --watch scenarios/preemption.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().BoolVarP(&simulateWatch, "watch", "w", false, "replay again whenever the file changes")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print the report as JSON")
	simulateCmd.Flags().StringVar(&simulateTheme, "theme", string(styles.ThemeDefault), "color theme (default, nord, plain)")
}

// simulateReport is the JSON shape printed by --json.
type simulateReport struct {
	Name  string                `json:"name"`
	Ticks []scenario.TickResult `json:"ticks"`
	Error string                `json:"error,omitempty"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if !styles.IsValidTheme(simulateTheme) {
		return fmt.Errorf("unknown theme %q (valid: %v)", simulateTheme, styles.BuiltinThemes())
	}

	out := cmd.OutOrStdout()
	r := tui.NewRenderer(outputTheme(out, styles.ThemeName(simulateTheme)))

	log, err := newLogger(nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	path := args[0]
	if !simulateWatch {
		return simulate(cmd.Context(), out, path, r, log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := scenario.NewWatcher(path, scenario.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := simulate(ctx, out, path, r, log); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), r.Styles().Muted.Render("watching "+w.Path()+" (ctrl+c to stop)"))

	err = w.Run(ctx, func() {
		fmt.Fprintln(out)
		if err := simulate(ctx, out, path, r, log); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// simulate replays the scenario once and writes the report to out. Ticks
// completed before a failure are still printed.
func simulate(ctx context.Context, out io.Writer, path string, r tui.Renderer, log *logging.Logger) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	results, runErr := scenario.Run(ctx, sc, scenario.Options{
		CommitTopic: viper.GetString("arbiter.commit_topic"),
		Logger:      log,
	})

	if simulateJSON {
		rep := simulateReport{Name: sc.Name, Ticks: results}
		if runErr != nil {
			rep.Error = runErr.Error()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return runErr
	}

	for _, res := range results {
		fmt.Fprintln(out, r.Tick(res))
	}
	fmt.Fprint(out, r.Summary(sc.Name, results))
	return runErr
}

// outputTheme falls back to the plain theme when out is not a terminal.
func outputTheme(out io.Writer, theme styles.ThemeName) styles.ThemeName {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return styles.ThemePlain
	}
	return theme
}
