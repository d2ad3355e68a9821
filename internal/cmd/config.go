package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/esnya/ResoBotGW/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View gateway configuration",
	Long: `View gateway configuration.

Without arguments, displays the effective configuration after merging
defaults, the config file, .env and environment variables.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "openai_api_key: %s\n", maskSecret(cfg.OpenAIAPIKey))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "mcp:")
	fmt.Fprintf(out, "  stdio_command: %q\n", cfg.MCP.StdioCommand)
	fmt.Fprintf(out, "  stdio_args: %q\n", cfg.MCPStdioArgs())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "arbiter:")
	fmt.Fprintf(out, "  commit_topic: %s\n", cfg.Arbiter.CommitTopic)
	fmt.Fprintf(out, "  tick_interval_ms: %d\n", cfg.Arbiter.TickIntervalMs)
	fmt.Fprintf(out, "  gather_timeout_ms: %d\n", cfg.Arbiter.GatherTimeoutMs)
	fmt.Fprintf(out, "  cross_bans: [%s]\n", strings.Join(cfg.Arbiter.CrossBans, ", "))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  dir: %q\n", cfg.Logging.Dir)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "runner:")
	fmt.Fprintf(out, "  poll_interval_ms: %d\n", cfg.Runner.PollIntervalMs)

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(out, used)
		return nil
	}
	fmt.Fprintf(out, "%s (not created)\n", config.ConfigFile())
	return nil
}

// maskSecret keeps the last four characters of a non-empty secret.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
