package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/benz9527/xcoll/lib/tree"
	"github.com/benz9527/xcoll/lib/xlog"
)

const envPrefix = "XTREE"

const (
	MetricsNone       = ""
	MetricsConsole    = "console"
	MetricsPrometheus = "prometheus"
)

type logConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	File    string `mapstructure:"file"`
}

type metricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Interval time.Duration `mapstructure:"interval"`
}

type config struct {
	Kind       string        `mapstructure:"kind"`
	Kinds      []string      `mapstructure:"kinds"`
	Ops        string        `mapstructure:"ops"`
	OpsFile    string        `mapstructure:"ops-file"`
	Render     bool          `mapstructure:"render"`
	Validate   bool          `mapstructure:"validate"`
	Desc       bool          `mapstructure:"desc"`
	BorrowSucc bool          `mapstructure:"borrow-succ"`
	Watch      bool          `mapstructure:"watch"`
	Log        logConfig     `mapstructure:"log"`
	Metrics    metricsConfig `mapstructure:"metrics"`
}

// flagKeys maps the config keys to the flag names.
var flagKeys = map[string]string{
	"kind":             "kind",
	"kinds":            "kinds",
	"ops":              "ops",
	"ops-file":         "ops-file",
	"render":           "render",
	"validate":         "validate",
	"desc":             "desc",
	"borrow-succ":      "borrow-succ",
	"watch":            "watch",
	"log.level":        "log-level",
	"log.encoder":      "log-encoder",
	"log.file":         "log-file",
	"metrics.exporter": "metrics",
	"metrics.interval": "metrics-interval",
}

// loadConfig merges the flags, XTREE_* env vars and the optional
// config file, the flags take precedence.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, cfgFile string) (*config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("kind", KindAVL)
	v.SetDefault("kinds", treeKinds)
	v.SetDefault("log.level", xlog.LogLevelInfo.String())
	v.SetDefault("log.encoder", xlog.PlainText.String())
	v.SetDefault("metrics.interval", 10*time.Second)

	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if len(cfgFile) > 0 {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	switch cfg.Metrics.Exporter = strings.ToLower(strings.TrimSpace(cfg.Metrics.Exporter)); cfg.Metrics.Exporter {
	case MetricsNone, MetricsConsole, MetricsPrometheus:
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics.Exporter)
	}
	return cfg, nil
}

func (cfg *config) treeOptions(kind string) []tree.TreeOption {
	opts := make([]tree.TreeOption, 0, 3)
	if cfg.Desc {
		opts = append(opts, tree.WithDesc())
	}
	if cfg.BorrowSucc {
		opts = append(opts, tree.WithRemoveBorrowSucc())
	}
	if cfg.Metrics.Exporter != MetricsNone {
		opts = append(opts, tree.WithTreeStats(kind))
	}
	return opts
}

// loadOps reads the inline ops first, then the ops file.
func (cfg *config) loadOps() ([]Op, error) {
	ops, err := ParseOps(strings.NewReader(cfg.Ops))
	if err != nil {
		return nil, err
	}
	if len(cfg.OpsFile) == 0 {
		return ops, nil
	}
	f, err := os.Open(cfg.OpsFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	fileOps, err := ParseOps(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.OpsFile, err)
	}
	return append(ops, fileOps...), nil
}

func newLogger(cfg *config) (xlog.XLogger, error) {
	lvl, err := xlog.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	enc, err := xlog.ParseLogEncoder(cfg.Log.Encoder)
	if err != nil {
		return nil, err
	}
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerContextFieldExtract(string(replayIDKey), ContextKeyReplayID),
	}
	if len(cfg.Log.File) > 0 {
		opts = append(opts, xlog.WithXLoggerFileWriter(cfg.Log.File))
	} else {
		opts = append(opts, xlog.WithXLoggerWriter(os.Stderr))
	}
	return xlog.NewXLogger(opts...)
}
