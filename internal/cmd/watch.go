package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esnya/ResoBotGW/internal/tui"
	"github.com/esnya/ResoBotGW/internal/tui/styles"
)

var watchTheme string

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Step through a scenario interactively",
	Long: `Open an interactive view of a scenario replay. Use the arrow keys to move
between ticks. The scenario is replayed again every time the file is saved,
so it can be edited alongside.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchTheme, "theme", string(styles.ThemeDefault), "color theme (default, nord, plain)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !styles.IsValidTheme(watchTheme) {
		return fmt.Errorf("unknown theme %q (valid: %v)", watchTheme, styles.BuiltinThemes())
	}
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}

	// Only a configured log directory is written to; stderr belongs to the TUI.
	log, err := newLogger(nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, args[0], tui.NewRenderer(styles.ThemeName(watchTheme)), log)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
