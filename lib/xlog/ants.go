package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger forwards the ants pool logs, mostly worker panics, to the
// xlogger as errors under the "Ants" component.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{
		logger: logger.Named("Ants"),
	}
}
