package xlog

import (
	"fmt"
)

// AntsXLogger adapts the XLogger to the ants pool logger.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{
		logger: logger.Named("Ants"),
	}
}
