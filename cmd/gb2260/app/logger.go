package app

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gbdata/gb2260/pkg/logging"
)

// NewLogger builds the application logger from config. Verbose lowers the
// level to debug, quiet raises it to error; an explicit LogLevel wins over
// both.
func NewLogger(config *Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case config.LogLevel != "":
		if parsed, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsed
		}
	case config.Verbose:
		level = zerolog.DebugLevel
	case config.Quiet:
		level = zerolog.ErrorLevel
	}

	var logger zerolog.Logger
	if config.LogFormat == "json" {
		logger = logging.New(os.Stderr)
	} else {
		logger = logging.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		})
	}

	logger = logger.Level(level)
	logging.SetDefault(logger)
	return logger
}
