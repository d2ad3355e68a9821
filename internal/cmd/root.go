package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/esnya/ResoBotGW/internal/config"
	"github.com/esnya/ResoBotGW/internal/runtime"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var rootCmd = &cobra.Command{
	Use:   "resobot-gw",
	Short: "Intent arbitration gateway for ResoBot agents",
	Long: `resobot-gw collects intents from concurrent agents every tick and decides
which of them may act, using priority tiers, a resource compatibility
matrix and time-bounded resource locks.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return &ExitError{Code: runtime.ExitConfig}
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	var exit *ExitError
	switch {
	case err == nil:
		return runtime.ExitOK
	case errors.As(err, &exit):
		return exit.Code
	default:
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 1
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("resobot-gw {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		_ = cmd.Usage()
		return &ExitError{Code: runtime.ExitConfig}
	})

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/resobot-gw/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	flags := rootCmd.PersistentFlags()
	envFile, _ := flags.GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to load env file:", err)
	}
	if err := config.BindEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to bind environment:", err)
	}

	if cfgFile, _ := flags.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
