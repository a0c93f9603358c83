package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const AppStatsName = "xcoll/app"

var (
	once        sync.Once
	appStatsErr error
)

type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
	rss              metric.Int64ObservableGauge
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func appStatsMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(AppStatsName)
	builder.WriteString("/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level instruments on the global
// meter provider once. The shutdown callback runs after ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown func(ctx context.Context) error) error {
	once.Do(func() {
		proc, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			appStatsErr = err
			return
		}
		meter := otel.Meter(
			appStatsMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
			rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.core.memory.rss",
				metric.WithDescription(`The application resident set size.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					mem, err := proc.MemoryInfoWithContext(ctx)
					if err != nil {
						return err
					}
					ob.Observe(int64(mem.RSS))
					return nil
				}),
			)),
		}
		if appStatsErr = otelruntime.Start(
			otelruntime.WithMinimumReadMemStatsInterval(time.Second),
		); appStatsErr != nil {
			return
		}
		stats.waitForShutdown()
	})
	return appStatsErr
}
