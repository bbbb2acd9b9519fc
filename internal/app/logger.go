package app

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the component-tagged logger shared by every subsystem.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes JSON lines with a timestamp and a component field.
type FileLogger struct{ base zerolog.Logger }

func NewFileLogger(w io.Writer) FileLogger {
	return FileLogger{base: zerolog.New(w).With().Timestamp().Logger()}
}

func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	l.base.Info().Str("component", component).Msgf(format, args...)
}

func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.base.Error().Str("component", component).Msgf(format, args...)
}
