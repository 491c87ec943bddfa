package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once sync.Once
)

type appStats struct {
	ctx          context.Context
	registration metric.Registration
	goroutines   metric.Int64ObservableUpDownCounter
	processes    metric.Int64ObservableUpDownCounter
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.registration == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.registration.Unregister()
	}()
}

func (stats *appStats) observe(_ context.Context, ob metric.Observer) error {
	ob.ObserveInt64(stats.goroutines, int64(runtime.NumGoroutine()))
	ob.ObserveInt64(stats.processes, int64(runtime.GOMAXPROCS(0)))
	return nil
}

func appMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the goroutines and GOMAXPROCS gauges and starts the
// otel runtime instrumentation against the global meter provider.
// Only the first call in a process takes effect. The gauges stop being
// observed once ctx is done.
func InitAppStats(ctx context.Context, name string) (err error) {
	once.Do(func() {
		meter := otel.Meter(
			appMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx: ctx,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
			)),
		}
		if stats.registration, err = meter.RegisterCallback(stats.observe, stats.goroutines, stats.processes); err != nil {
			return
		}
		stats.waitForShutdown()
		err = otelruntime.Start()
	})
	return err
}
