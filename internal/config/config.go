package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/esnya/ResoBotGW/internal/compat"
	"github.com/esnya/ResoBotGW/internal/event"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// AppName names the config directory and the environment prefix.
const AppName = "resobot-gw"

// EnvPrefix is prepended to every config key when read from the environment
// (arbiter.tick_interval_ms -> RESOBOT_ARBITER_TICK_INTERVAL_MS).
const EnvPrefix = "RESOBOT"

// Bare environment variable names accepted alongside the prefixed ones.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvMCPStdioCommand = "MCP_STDIO_COMMAND"
	EnvMCPStdioArgs    = "MCP_STDIO_ARGS"
)

// Config represents the complete gateway configuration
type Config struct {
	// OpenAIAPIKey authenticates the model adapter. Required outside dry runs.
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	MCP          MCPConfig     `mapstructure:"mcp"`
	Arbiter      ArbiterConfig `mapstructure:"arbiter"`
	Logging      LoggingConfig `mapstructure:"logging"`
	Runner       RunnerConfig  `mapstructure:"runner"`
}

// MCPConfig describes the optional stdio tool server. An empty command
// disables it.
type MCPConfig struct {
	StdioCommand string `mapstructure:"stdio_command"`
	// StdioArgs is a whitespace-separated argument string.
	StdioArgs string `mapstructure:"stdio_args"`
}

// ArbiterConfig controls the arbitration loop
type ArbiterConfig struct {
	// CommitTopic is the bus topic committed batches are published on.
	CommitTopic string `mapstructure:"commit_topic"`
	// TickIntervalMs is the period of the tick loop.
	TickIntervalMs int `mapstructure:"tick_interval_ms"`
	// GatherTimeoutMs bounds a concurrent gather (0 = unbounded).
	GatherTimeoutMs int `mapstructure:"gather_timeout_ms"`
	// CrossBans lists extra incompatible resource pairs as "a|b".
	CrossBans []string `mapstructure:"cross_bans"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Dir holds gateway.log. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the size at which gateway.log is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups"`
}

// RunnerConfig controls the agent runner
type RunnerConfig struct {
	// PollIntervalMs is how often an idle runner checks for shutdown.
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Arbiter: ArbiterConfig{
			CommitTopic:     event.DefaultCommitTopic,
			TickIntervalMs:  100,
			GatherTimeoutMs: 0,
			CrossBans:       []string{},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
		},
		Runner: RunnerConfig{
			PollIntervalMs: 500,
		},
	}
}

// MCPStdioArgs splits the configured argument string on whitespace.
func (c *Config) MCPStdioArgs() []string {
	return strings.Fields(c.MCP.StdioArgs)
}

// TickInterval returns the tick period as a time.Duration
func (c *ArbiterConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// GatherTimeout returns the gather bound as a time.Duration (0 means none)
func (c *ArbiterConfig) GatherTimeout() time.Duration {
	return time.Duration(c.GatherTimeoutMs) * time.Millisecond
}

// Matrix builds the compatibility matrix: self-conflicts plus CrossBans.
func (c *ArbiterConfig) Matrix() (compat.Matrix, error) {
	b := compat.NewBuilder()
	if err := b.BanNames(c.CrossBans...); err != nil {
		return compat.Matrix{}, err
	}
	return b.Build(), nil
}

// Rotation returns the log rotation settings
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{MaxSizeMB: c.MaxSizeMB, MaxBackups: c.MaxBackups}
}

// PollInterval returns the runner poll interval as a time.Duration
func (c *RunnerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("openai_api_key", defaults.OpenAIAPIKey)

	viper.SetDefault("mcp.stdio_command", defaults.MCP.StdioCommand)
	viper.SetDefault("mcp.stdio_args", defaults.MCP.StdioArgs)

	viper.SetDefault("arbiter.commit_topic", defaults.Arbiter.CommitTopic)
	viper.SetDefault("arbiter.tick_interval_ms", defaults.Arbiter.TickIntervalMs)
	viper.SetDefault("arbiter.gather_timeout_ms", defaults.Arbiter.GatherTimeoutMs)
	viper.SetDefault("arbiter.cross_bans", defaults.Arbiter.CrossBans)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("runner.poll_interval_ms", defaults.Runner.PollIntervalMs)
}

// BindEnv wires environment variables into viper: every key under the
// RESOBOT_ prefix, plus the bare names the gateway has always accepted.
func BindEnv() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bare := map[string]string{
		"openai_api_key":    EnvOpenAIAPIKey,
		"mcp.stdio_command": EnvMCPStdioCommand,
		"mcp.stdio_args":    EnvMCPStdioArgs,
	}
	for key, name := range bare {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := viper.BindEnv(key, prefixed, name); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates
// it, including credentials.
func Load() (*Config, error) {
	cfg, err := unmarshal()
	if err != nil {
		return nil, err
	}
	errs := append(cfg.Validate(), cfg.validateCredentials()...)
	if len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadSettings is Load without the credential checks, for commands that never
// reach an external service.
func LoadSettings() (*Config, error) {
	cfg, err := unmarshal()
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	cfg.normalize()
	return cfg, nil
}

func unmarshal() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a Config from an explicit environment map without reading
// the process environment or viper. Only the bare variable names are
// consulted; everything else keeps its default.
func FromEnv(env map[string]string) (*Config, error) {
	cfg := Default()
	cfg.OpenAIAPIKey = env[EnvOpenAIAPIKey]
	cfg.MCP.StdioCommand = env[EnvMCPStdioCommand]
	cfg.MCP.StdioArgs = env[EnvMCPStdioArgs]

	errs := append(cfg.Validate(), cfg.validateCredentials()...)
	if len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize trims values that are compared after whitespace removal.
func (c *Config) normalize() {
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.MCP.StdioCommand = strings.TrimSpace(c.MCP.StdioCommand)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return gotenv.Load(path)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
