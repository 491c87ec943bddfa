package stress

import (
	"context"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
)

const (
	meterName        = "xtree/stress"
	workloadCtxField = "workload"
)

type Report struct {
	Seed      uint64
	Workloads int
	Failed    int
	Ops       int64
	Elapsed   time.Duration
	// Results of the succeeded workloads, ordered by ID.
	Results []WorkloadResult
}

// Runner spreads the workloads over an ants pool. Every tree is owned by
// the single goroutine running its workload.
type Runner struct {
	cfg      *Config
	logger   xlog.XLogger
	ops      metric.Int64Counter
	failures metric.Int64Counter
	newTree  func(desc bool) tree.AVLTree[int64, int64]
}

type RunnerOption func(*Runner)

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunnerMeterProvider replaces the otel global meter provider.
func WithRunnerMeterProvider(mp metric.MeterProvider) RunnerOption {
	return func(r *Runner) {
		if mp != nil {
			r.initCounters(mp.Meter(meterName))
		}
	}
}

func (r *Runner) initCounters(meter metric.Meter) {
	r.ops = lo.Must[metric.Int64Counter](meter.Int64Counter(
		"xtree.stress.ops",
		metric.WithDescription("The tree operations applied by the stress workloads."),
	))
	r.failures = lo.Must[metric.Int64Counter](meter.Int64Counter(
		"xtree.stress.failures",
		metric.WithDescription("The failed stress workloads."),
	))
}

func NewRunner(cfg *Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg: cfg,
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	if r.logger == nil {
		r.logger = xlog.NewXLogger(
			xlog.WithXLoggerLevel(xlog.LogLevelInfo),
			xlog.WithXLoggerContextFieldExtract(workloadCtxField),
		)
	}
	r.logger = r.logger.Named("stress")
	if r.ops == nil || r.failures == nil {
		r.initCounters(otel.Meter(meterName))
	}
	return r, nil
}

func (r *Runner) seed() uint64 {
	if r.cfg.Seed != 0 {
		return r.cfg.Seed
	}
	return randv2.Uint64()
}

// Run blocks until every submitted workload returns. A canceled ctx stops
// the submission and the running workloads, the partial report is returned
// along with the joined errors.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{
		Seed:      r.seed(),
		Workloads: r.cfg.Workloads,
		Results:   make([]WorkloadResult, 0, r.cfg.Workloads),
	}
	pool, err := antsv2.NewPool(r.cfg.Workers, antsv2.WithLogger(xlog.NewAntsXLogger(r.logger)))
	if err != nil {
		return report, infra.WrapErrorStackWithMessage(err, "[stress] create ants pool")
	}
	defer pool.Release()

	r.logger.Info("stress started",
		zap.Uint64("seed", report.Seed),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("workloads", r.cfg.Workloads),
		zap.Int("keys", r.cfg.Keys),
		zap.Bool("verify", r.cfg.Verify),
		zap.Bool("desc", r.cfg.Desc),
	)
	start := time.Now()
	attrs := metric.WithAttributes(attribute.Bool("desc", r.cfg.Desc))

	var (
		lock sync.Mutex
		wg   sync.WaitGroup
		errs error
	)
	fail := func(wctx context.Context, err error) {
		r.failures.Add(ctx, 1, attrs)
		r.logger.ErrorStackContext(wctx, err, "workload failed")
		lock.Lock()
		defer lock.Unlock()
		report.Failed++
		errs = multierr.Append(errs, err)
	}

	for id := 0; id < r.cfg.Workloads; id++ {
		if err = ctx.Err(); err != nil {
			lock.Lock()
			errs = multierr.Append(errs, infra.WrapErrorStackWithMessage(err, "[stress] submission canceled"))
			lock.Unlock()
			break
		}
		w := newWorkload(id, report.Seed, r.cfg)
		if r.newTree != nil {
			w.newTree = func() tree.AVLTree[int64, int64] {
				return r.newTree(w.desc)
			}
		}
		wctx := context.WithValue(ctx, xlog.ContextKey(workloadCtxField), id)

		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			res, err := r.runWorkload(wctx, w)
			r.ops.Add(ctx, res.Ops, attrs)
			if err != nil {
				fail(wctx, err)
				return
			}
			r.logger.InfoContext(wctx, "workload finished",
				zap.Int64("ops", res.Ops),
				zap.Int64("len", res.Len),
				zap.Int64("height", res.Height),
			)
			lock.Lock()
			defer lock.Unlock()
			report.Ops += res.Ops
			report.Results = append(report.Results, res)
		})
		if err != nil {
			wg.Done()
			fail(wctx, infra.WrapErrorStackWithMessage(err, "[stress] submit workload"))
		}
	}
	wg.Wait()

	report.Elapsed = time.Since(start)
	slices.SortFunc(report.Results, func(a, b WorkloadResult) int {
		return a.ID - b.ID
	})
	r.logger.Info("stress finished",
		zap.Int("failed", report.Failed),
		zap.Int64("ops", report.Ops),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, errs
}

// A broken tree panics by its debug assertions, the panic is reported as
// the workload error instead of killing the pool worker.
func (r *Runner) runWorkload(ctx context.Context, w *Workload) (res WorkloadResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res.ID = w.id
			err = infra.NewErrorStack(fmt.Sprintf("[stress] workload %d panic: %v", w.id, p))
		}
	}()
	r.logger.InfoContext(ctx, "workload started")
	return w.Run(ctx)
}
