// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel `envconfig:"LOG_LEVEL"`

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool `envconfig:"LOG_PRETTY"`

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer `ignored:"true"`
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// LoadConfig returns DefaultConfig overlaid with <prefix>_LOG_LEVEL and
// <prefix>_LOG_PRETTY.
func LoadConfig(prefix string) (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load log config: %w", err)
	}
	return cfg, nil
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Redact shortens a token or cookie header for log output, keeping only the
// first four characters.
func Redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + "..." + fmt.Sprintf("(%d chars)", len(secret))
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Each Cirrus call (operation, request id, parameter count)
//   - Login flow steps (player page, sign-in form, meta refresh)
//   - Session store loads
//
// Info: Normal operation events
//   - Successful login
//   - Session saved
//
// Warn: Warning conditions that don't prevent operation
//   - Remote rejections (RemoteRequestError)
//   - Unexpected response shapes
//   - Ambiguous album lookups
//   - No config directory found
//
// Error: Error conditions requiring attention
//   - Transport failures (TransportError)
//   - Session store failures
//
// Context Fields:
//   - component: Emitting component (cirrus-client, session-bootstrap, session-store, cli)
//   - operation: Cirrus operation name
//   - request_id: x-amzn-RequestId sent with the call
//   - status: HTTP status code
//   - code: Remote error code
//   - customer_id: Customer id of the session
//   - backend: Session store backend (file, redis)
