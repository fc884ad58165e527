package config

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the structured logger for a binary. The level comes from
// LOG_LEVEL (debug, info, warn, error) and defaults to info.
func NewLogger(prefix string) *log.Logger {
	return newLogger(os.Stderr, prefix, GetEnv("LOG_LEVEL", "info"))
}

func newLogger(w io.Writer, prefix, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
		logger.Warn("unknown LOG_LEVEL, using info", "value", level)
	}
	logger.SetLevel(lvl)
	return logger
}
