package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	APP        = "APP"
	CHAT       = "CHAT"
	CLI        = "CLI"
	CONFIG     = "CONFIG"
	HANDLER    = "HANDLER"
	KNOWLEDGE  = "KNOWLEDGE"
	MIDDLEWARE = "MIDDLEWARE"
	REDIS      = "REDIS"
	SERVICE    = "SERVICE"
)

// Setup replaces the global zerolog logger. Output goes to w, which is
// stderr in the CLI so that stdout only ever carries answers.
func Setup(w io.Writer, level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// For returns a child of the global logger tagged with the namespace.
func For(namespace string) *zerolog.Logger {
	l := log.With().Str("component", namespace).Logger()
	return &l
}

func Debug(namespace, format string, v ...interface{}) {
	For(namespace).Debug().Msgf(format, v...)
}

func Info(namespace, format string, v ...interface{}) {
	For(namespace).Info().Msgf(format, v...)
}

func Warn(namespace, format string, v ...interface{}) {
	For(namespace).Warn().Msgf(format, v...)
}

func Error(namespace, format string, v ...interface{}) {
	For(namespace).Error().Msgf(format, v...)
}
