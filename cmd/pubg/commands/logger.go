package commands

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Logger adapts a zerolog.Logger to pubg.Logger.
type Logger struct {
	logger zerolog.Logger
}

var _ pubg.Logger = (*Logger)(nil)

// NewLogger writes console-formatted logs to w. Debug entries are only
// emitted when verbose is set.
func NewLogger(w io.Writer, verbose bool) *Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return &Logger{
		logger: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

// NewLoggerFrom wraps an existing zerolog.Logger.
func NewLoggerFrom(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug implements pubg.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info implements pubg.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn implements pubg.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error implements pubg.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
