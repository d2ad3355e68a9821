package cmd

import (
	"io"

	"github.com/spf13/viper"

	"github.com/esnya/ResoBotGW/internal/config"
	"github.com/esnya/ResoBotGW/internal/logging"
)

// newLogger builds the logger from the logging.* settings without
// validating the rest of the configuration. Logs go to fallback when no
// log directory is configured; a nil fallback discards them.
func newLogger(fallback io.Writer) (*logging.Logger, error) {
	lc := config.LoggingConfig{
		Level:      viper.GetString("logging.level"),
		Dir:        viper.GetString("logging.dir"),
		MaxSizeMB:  viper.GetInt("logging.max_size_mb"),
		MaxBackups: viper.GetInt("logging.max_backups"),
	}
	if lc.Dir == "" {
		if fallback == nil {
			return logging.NopLogger(), nil
		}
		return logging.NewWriterLogger(fallback, lc.Level), nil
	}
	return logging.NewLogger(lc.Dir, lc.Level, lc.Rotation())
}
