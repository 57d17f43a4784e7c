// Package logger configures the structured application log.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Log levels accepted in the settings file.
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

const sessionField = "session"

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level zerolog.Level
	// Output is where logs are written, nothing is logged if nil.
	Output io.Writer
	// Pretty enables human-readable console output.
	Pretty bool
	// TimeFormat defaults to RFC3339.
	TimeFormat string
	// SessionID is attached to every entry if set.
	SessionID string
}

// DefaultConfig logs nothing at InfoLevel.
func DefaultConfig() Config {
	return Config{
		Level:      InfoLevel,
		TimeFormat: time.RFC3339,
	}
}

// New creates a logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		return zerolog.Nop()
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
			NoColor:    true,
		}
	}

	ctx := zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp()
	if cfg.SessionID != "" {
		ctx = ctx.Str(sessionField, cfg.SessionID)
	}
	return ctx.Logger()
}

// ParseLevel parses a log level string (case-insensitive). It returns
// InfoLevel if the string is not recognized.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// NewSessionID creates a random identifier for a shell session.
func NewSessionID() string {
	return uuid.NewString()
}
