package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/xlog"
	"github.com/benz9527/xcoll/observability"
)

const (
	replayIDKey        xlog.ContextKey = "replay"
	ContextKeyReplayID                 = "replayID"
)

type runEnv struct {
	cfg *config
	out io.Writer
}

type replayer struct {
	env    *runEnv
	logger xlog.XLogger
	runs   atomic.Int64
}

func newReplayer(env *runEnv, logger xlog.XLogger) *replayer {
	return &replayer{
		env:    env,
		logger: logger.Named("Replay"),
	}
}

func (r *replayer) replayOnce(ctx context.Context) error {
	cfg := r.env.cfg
	ops, err := cfg.loadOps()
	if err != nil {
		return err
	}
	t, err := newTree(cfg.Kind, cfg.treeOptions(cfg.Kind)...)
	if err != nil {
		return err
	}
	defer t.Release()

	ctx = context.WithValue(ctx, replayIDKey, fmt.Sprintf("%s-%d", cfg.Kind, r.runs.Add(1)))
	res, err := replay(ctx, cfg.Kind, t, ops, r.logger)
	if err != nil {
		return err
	}
	if err = res.print(r.env.out, cfg.Render, cfg.Validate); err != nil {
		return err
	}
	if cfg.Validate && res.Invalid != nil {
		return res.Invalid
	}
	return nil
}

func provideLogger(lc fx.Lifecycle, env *runEnv) (xlog.XLogger, error) {
	logger, err := newLogger(env.cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Syncing a terminal may fail, it is not a replay failure.
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func registerMetrics(lc fx.Lifecycle, env *runEnv, logger xlog.XLogger) error {
	cfg := env.cfg
	switch cfg.Metrics.Exporter {
	case MetricsConsole:
		shutdown, err := observability.NewConsoleMetricsExporter(
			cfg.Metrics.Interval,
			time.Second,
			stdoutmetric.WithWriter(env.out),
			stdoutmetric.WithPrettyPrint(),
		)
		if err != nil {
			return err
		}
		lc.Append(fx.Hook{OnStop: shutdown})
	case MetricsPrometheus:
		reg := prometheus.NewRegistry()
		shutdown, err := observability.NewPrometheusMetricsExporter(reg)
		if err != nil {
			return err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return multierr.Combine(
					observability.WritePrometheusText(env.out, reg),
					shutdown(ctx),
				)
			},
		})
	default:
		return nil
	}
	logger.Debug("metrics exporter registered", zap.String("exporter", cfg.Metrics.Exporter))
	return observability.InitAppStats(context.Background(), "xtree", nil)
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay the ops against one tree",
		Example: `  xtree run --kind rb --ops "+10 +20 +30 -10" --render --validate
  xtree run --kind avl --ops-file ops.txt --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringP("kind", "k", KindAVL, "tree kind: avl, rb, bst")
	flags.Bool("watch", false, "replay again whenever the ops file changes")
	addReplayFlags(flags)
	return cmd
}

func runReplay(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts.v, cmd.Flags(), opts.cfgFile)
	if err != nil {
		return err
	}
	if cfg.Watch && len(cfg.OpsFile) == 0 {
		return errors.New("--watch requires --ops-file")
	}

	env := &runEnv{cfg: cfg, out: cmd.OutOrStdout()}
	var r *replayer
	app := fx.New(
		fx.Supply(env),
		fx.Provide(provideLogger, newReplayer),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerMetrics),
		fx.Populate(&r),
	)
	if err = app.Err(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err = app.Start(ctx); err != nil {
		return err
	}

	err = r.replayOnce(ctx)
	if cfg.Watch {
		if err != nil {
			r.logger.Error(err, "replay failed")
		}
		err = watchOpsFile(ctx, cfg.OpsFile, r.logger, func(ctx context.Context) error {
			if err := r.replayOnce(ctx); err != nil {
				r.logger.Error(err, "replay failed")
			}
			return nil
		})
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return multierr.Append(err, app.Stop(stopCtx))
}
