package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// xLogger is wrapper logger of Uber zap logger.
type xLogger struct {
	logger              atomic.Pointer[zap.Logger]
	ctxFields           map[string]string
	dynamicLevelEnabler zap.AtomicLevel
	encoder             LogEncoderType
	stops               []func() error
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *xLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

// Sync flushes the cores and releases the writers owned by the logger.
// Child loggers only flush.
func (l *xLogger) Sync() error {
	err := l.logger.Load().Sync()
	for _, stop := range l.stops {
		err = multierr.Append(err, stop())
	}
	l.stops = nil
	return err
}

func (l *xLogger) Named(name string) XLogger {
	child := &xLogger{
		ctxFields:           l.ctxFields,
		dynamicLevelEnabler: l.dynamicLevelEnabler,
		encoder:             l.encoder,
	}
	child.logger.Store(l.logger.Load().Named(name))
	return child
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Debug(msg, newFields...)
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Info(msg, newFields...)
}

func (l *xLogger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Warn(msg, newFields...)
}

func (l *xLogger) ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

type loggerCfg struct {
	ctxFields        map[string]string
	encoderType      *LogEncoderType
	lvlEncoder       zapcore.LevelEncoder
	tsEncoder        zapcore.TimeEncoder
	level            *zapcore.Level
	coreConstructors []xLogCoreConstructor
}

func (cfg *loggerCfg) apply(l *xLogger) ([]xLogCore, error) {
	if cfg.encoderType != nil {
		l.encoder = *cfg.encoderType
	} else {
		l.encoder = JSON
	}

	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		lvl, _ := ParseLogLevel(os.Getenv("XLOG_LVL"))
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(lvl.zapLevel())
	}

	l.ctxFields = cfg.ctxFields

	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}

	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}

	if len(cfg.coreConstructors) == 0 {
		cfg.coreConstructors = []xLogCoreConstructor{
			newConsoleCore(nil),
		}
	}

	cores := make([]xLogCore, 0, len(cfg.coreConstructors))
	for _, cc := range cfg.coreConstructors {
		core, stop, err := cc(
			l.dynamicLevelEnabler,
			l.encoder,
			cfg.lvlEncoder,
			cfg.tsEncoder,
		)
		if err != nil {
			for _, stop := range l.stops {
				_ = stop()
			}
			return nil, err
		}
		cores = append(cores, core)
		if stop != nil {
			l.stops = append(l.stops, stop)
		}
	}
	return cores, nil
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) (XLogger, error) {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	xl := &xLogger{}
	cores, err := cfg.apply(xl)
	if err != nil {
		return nil, err
	}

	// Disable zap logger error stack.
	l := zap.New(
		xLogTeeCore(cores...),
		zap.AddCallerSkip(1), // Use caller filename as service
		zap.AddCaller(),
	)
	xl.logger.Store(l)
	return xl, nil
}

// NewNopXLogger drops every entry.
func NewNopXLogger() XLogger {
	xl := &xLogger{
		dynamicLevelEnabler: zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
	xl.logger.Store(zap.NewNop())
	return xl
}

// WithXLoggerWriter adds a console core writing into the out.
func WithXLoggerWriter(out io.Writer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if out == nil {
			return errors.Join(ErrUnknownLogOption, errors.New("nil writer"))
		}
		cfg.coreConstructors = append(cfg.coreConstructors, newConsoleCore(out))
		return nil
	}
}

func WithXLoggerStdOutWriter() XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.coreConstructors = append(cfg.coreConstructors, newConsoleCore(nil))
		return nil
	}
}

func WithXLoggerFileWriter(filePath string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.coreConstructors = append(cfg.coreConstructors, newFileCore(filePath))
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return errors.Join(ErrUnknownLogOption, errors.New("unknown xlogger encoder"))
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

// WithXLoggerContextFieldExtract logs the context value of the field
// under the mapTo key. ContextKeyMapToOmitempty skips absent values.
func WithXLoggerContextFieldExtract(field string, mapTo ...string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if len(field) == 0 {
			return nil
		}
		if cfg.ctxFields == nil {
			cfg.ctxFields = make(map[string]string, 4)
		}
		if len(mapTo) == 0 || mapTo[0] == ContextKeyMapToItself {
			mapTo = []string{field}
		}
		cfg.ctxFields[field] = mapTo[0]
		return nil
	}
}

// ContextKey is the key type of the values extracted from the context.
type ContextKey string

func extractFieldsFromContext(ctx context.Context, targets map[string]string) []zap.Field {
	if ctx == nil || len(targets) == 0 {
		return []zap.Field{}
	}

	keys := lo.Keys(targets)
	slices.Sort(keys)
	newFields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		v := ctx.Value(ContextKey(key))
		mapTo := targets[key]
		if mapTo == ContextKeyMapToOmitempty {
			if v != nil {
				newFields = append(newFields, zap.Any(key, v))
			}
			continue
		}
		if v == nil {
			newFields = append(newFields, zap.String(mapTo, "nil"))
		} else {
			newFields = append(newFields, zap.Any(mapTo, v))
		}
	}
	return newFields
}
