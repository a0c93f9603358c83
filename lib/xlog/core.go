package xlog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type xLogCore interface {
	timeEncoder() zapcore.TimeEncoder
	levelEncoder() zapcore.LevelEncoder
	writeSyncer() zapcore.WriteSyncer
	outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder

	zapcore.Core
}

// xLogCoreConstructor builds a core and its release callback.
type xLogCoreConstructor func(
	zapcore.LevelEnabler,
	LogEncoderType,
	zapcore.LevelEncoder,
	zapcore.TimeEncoder,
) (xLogCore, func() error, error)

var _ xLogCore = (*commonCore)(nil)

type commonCore struct {
	lvlEnabler zapcore.LevelEnabler
	lvlEnc     zapcore.LevelEncoder
	tsEnc      zapcore.TimeEncoder
	ws         zapcore.WriteSyncer
	enc        func(cfg zapcore.EncoderConfig) zapcore.Encoder
	core       zapcore.Core
}

func (cc *commonCore) timeEncoder() zapcore.TimeEncoder                            { return cc.tsEnc }
func (cc *commonCore) levelEncoder() zapcore.LevelEncoder                          { return cc.lvlEnc }
func (cc *commonCore) writeSyncer() zapcore.WriteSyncer                            { return cc.ws }
func (cc *commonCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder { return cc.enc }
func (cc *commonCore) Enabled(lvl zapcore.Level) bool {
	return cc.lvlEnabler.Enabled(lvl)
}

func (cc *commonCore) With(fields []zap.Field) zapcore.Core {
	return cc.core.With(fields)
}

func (cc *commonCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return cc.core.Check(ent, ce)
}

func (cc *commonCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	return cc.core.Write(ent, fields)
}

func (cc *commonCore) Sync() error {
	return cc.core.Sync()
}

func defaultCoreEncoderCfg() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
}

func newCommonCore(
	ws zapcore.WriteSyncer,
	lvlEnabler zapcore.LevelEnabler,
	encoder LogEncoderType,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) *commonCore {
	cc := &commonCore{
		lvlEnabler: lvlEnabler,
		lvlEnc:     lvlEnc,
		tsEnc:      tsEnc,
		ws:         ws,
		enc:        getEncoderByType(encoder),
	}
	config := defaultCoreEncoderCfg()
	config.EncodeLevel = cc.lvlEnc
	config.EncodeTime = cc.tsEnc
	cc.core = zapcore.NewCore(cc.enc(config), cc.ws, cc.lvlEnabler)
	return cc
}

// newConsoleCore writes into the out, os.Stdout through a buffer by default.
func newConsoleCore(out io.Writer) xLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (xLogCore, func() error, error) {
		if out != nil {
			return newCommonCore(zapcore.Lock(zapcore.AddSync(out)), lvlEnabler, encoder, lvlEnc, tsEnc), nil, nil
		}
		ws := &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(os.Stdout),
			Size:          64 * 1024,
			FlushInterval: 5 * time.Second,
		}
		return newCommonCore(ws, lvlEnabler, encoder, lvlEnc, tsEnc), ws.Stop, nil
	}
}

// newFileCore appends into a file that must stay beneath its directory.
func newFileCore(filePath string) xLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder LogEncoderType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) (xLogCore, func() error, error) {
		dir, filename := filepath.Split(filepath.Clean(filePath))
		if len(filename) == 0 || filename == "." {
			return nil, nil, errors.Join(ErrUnknownLogOption, errors.New("empty log filename"))
		}
		if len(dir) == 0 {
			dir = "."
		}
		f, err := safeopen.OpenFileBeneath(dir, filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return newCommonCore(zapcore.Lock(f), lvlEnabler, encoder, lvlEnc, tsEnc), f.Close, nil
	}
}

var _ xLogCore = (xLogMultiCore)(nil)

type xLogMultiCore []xLogCore

func (mc xLogMultiCore) levelEncoder() zapcore.LevelEncoder {
	return nil
}

func (mc xLogMultiCore) outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return nil
}

func (mc xLogMultiCore) timeEncoder() zapcore.TimeEncoder {
	return nil
}

func (mc xLogMultiCore) writeSyncer() zapcore.WriteSyncer {
	return nil
}

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	clone := make([]zapcore.Core, len(mc))
	for i := range mc {
		clone[i] = mc[i].With(fields)
	}
	return zapcore.NewTee(clone...)
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	for i := range mc {
		if mc[i].Enabled(lvl) {
			return true
		}
	}
	return false
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for i := range mc {
		ce = mc[i].Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var err error
	for i := range mc {
		err = multierr.Append(err, mc[i].Write(ent, fields))
	}
	return err
}

func (mc xLogMultiCore) Sync() error {
	var err error
	for i := range mc {
		err = multierr.Append(err, mc[i].Sync())
	}
	return err
}

func xLogTeeCore(cores ...xLogCore) xLogCore {
	return xLogMultiCore(cores)
}
