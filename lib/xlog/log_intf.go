package xlog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrUnknownLogOption = errors.New("[XLogger] unknown log option")

type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (lvl LogLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl LogLevel) String() string {
	return string(lvl)
}

// ParseLogLevel is case-insensitive, blank is DEBUG.
func ParseLogLevel(level string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToUpper(strings.TrimSpace(level))); lvl {
	case "":
		return LogLevelDebug, nil
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return lvl, nil
	default:
	}
	return LogLevelDebug, errors.Join(ErrUnknownLogOption, errors.New("level "+level))
}

type LogEncoderType uint8

const (
	JSON LogEncoderType = iota
	PlainText
	_encMax
)

func (enc LogEncoderType) String() string {
	switch enc {
	case JSON:
		return "json"
	case PlainText:
		return "plaintext"
	default:
	}
	return "unknown"
}

// ParseLogEncoder accepts "json", "plaintext" or "console".
func ParseLogEncoder(encoder string) (LogEncoderType, error) {
	switch strings.ToLower(strings.TrimSpace(encoder)) {
	case "", "json":
		return JSON, nil
	case "plaintext", "console", "text":
		return PlainText, nil
	default:
	}
	return _encMax, errors.Join(ErrUnknownLogOption, errors.New("encoder "+encoder))
}

const (
	ContextKeyMapToOmitempty = "_"
	ContextKeyMapToItself    = ""
	coreKeyIgnored           = ""
)

var encoderMap = map[LogEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
	JSON:      zapcore.NewJSONEncoder,
	PlainText: zapcore.NewConsoleEncoder,
}

func getEncoderByType(typ LogEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

// XLogger mainly implemented by Uber zap logger.
//
// The interface methods with context is used to add more
// additional fields to the log. We can pass like trace ID,
// replay ID, etc. To do the log trace.
//
// Log format is not recommended, because it is low performance.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error
	// Named returns a child logger whose entries carry the component name.
	Named(name string) XLogger

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)

	DebugContext(ctx context.Context, msg string, fields ...zap.Field)
	InfoContext(ctx context.Context, msg string, fields ...zap.Field)
	WarnContext(ctx context.Context, msg string, fields ...zap.Field)
	ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field)

	Logf(lvl zapcore.Level, format string, args ...any)
}
