package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "arbiter.tick_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Has reports whether any error concerns field.
func (e ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(e, func(v ValidationError) bool { return v.Field == field })
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Credentials are checked separately by Load.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateMCP()...)
	errors = append(errors, c.validateArbiter()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateRunner()...)
	return errors
}

func (c *Config) validateCredentials() []ValidationError {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return []ValidationError{{
			Field:   "openai_api_key",
			Value:   "",
			Message: EnvOpenAIAPIKey + " is required and must be non-empty",
		}}
	}
	return nil
}

// validateMCP validates the MCPConfig
func (c *Config) validateMCP() []ValidationError {
	var errors []ValidationError

	// Unset is fine; set-but-blank is a mistake.
	if c.MCP.StdioCommand != "" && strings.TrimSpace(c.MCP.StdioCommand) == "" {
		errors = append(errors, ValidationError{
			Field:   "mcp.stdio_command",
			Value:   c.MCP.StdioCommand,
			Message: EnvMCPStdioCommand + ", if set, must be non-empty",
		})
	}
	if strings.TrimSpace(c.MCP.StdioCommand) == "" && strings.TrimSpace(c.MCP.StdioArgs) != "" {
		errors = append(errors, ValidationError{
			Field:   "mcp.stdio_args",
			Value:   c.MCP.StdioArgs,
			Message: "requires mcp.stdio_command",
		})
	}

	return errors
}

// validateArbiter validates the ArbiterConfig
func (c *Config) validateArbiter() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Arbiter.CommitTopic) == "" {
		errors = append(errors, ValidationError{
			Field:   "arbiter.commit_topic",
			Value:   c.Arbiter.CommitTopic,
			Message: "must be non-empty",
		})
	}

	if c.Arbiter.TickIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "arbiter.tick_interval_ms",
			Value:   c.Arbiter.TickIntervalMs,
			Message: "must be positive",
		})
	}

	if c.Arbiter.GatherTimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "arbiter.gather_timeout_ms",
			Value:   c.Arbiter.GatherTimeoutMs,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	if _, err := c.Arbiter.Matrix(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "arbiter.cross_bans",
			Value:   c.Arbiter.CrossBans,
			Message: err.Error(),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level != "" && !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables rotation)",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateRunner validates the RunnerConfig
func (c *Config) validateRunner() []ValidationError {
	if c.Runner.PollIntervalMs <= 0 {
		return []ValidationError{{
			Field:   "runner.poll_interval_ms",
			Value:   c.Runner.PollIntervalMs,
			Message: "must be positive",
		}}
	}
	return nil
}
