package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/stress"
)

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"
)

type stressOptions struct {
	configPath  string
	workers     int
	workloads   int
	keys        int
	seed        uint64
	desc        bool
	noVerify    bool
	metrics     string
	metricsAddr string
	logLevel    string
}

func newStressCmd() *cobra.Command {
	opts := &stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run randomized invariant-checking workloads over independent trees",
		Example: `  xtree stress --workers 8 --workloads 64 --keys 4096
  xtree stress --config stress.yaml --metrics console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStress(ctx, cmd, cfg, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML stress config file")
	flags.IntVar(&opts.workers, "workers", 0, "ants pool capacity")
	flags.IntVar(&opts.workloads, "workloads", 0, "number of independent trees")
	flags.IntVar(&opts.keys, "keys", 0, "upper bound of distinct keys per tree")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed of the key sequences, 0 picks a random one")
	flags.BoolVar(&opts.desc, "desc", false, "order the keys descending")
	flags.BoolVar(&opts.noVerify, "no-verify", false, "validate the final state only")
	flags.StringVar(&opts.metrics, "metrics", metricsNone, "metrics exporter: none, console or prometheus")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "listen address of the prometheus exporter")
	flags.StringVar(&opts.logLevel, "log-level", xlog.LogLevelInfo.String(), "DEBUG, INFO, WARN or ERROR")
	return cmd
}

// load applies the changed flags on top of the config file or the defaults.
func (opts *stressOptions) load(cmd *cobra.Command) (*stress.Config, error) {
	cfg := stress.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = stress.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("workloads") {
		cfg.Workloads = opts.workloads
	}
	if flags.Changed("keys") {
		cfg.Keys = opts.keys
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("desc") {
		cfg.Desc = opts.desc
	}
	if flags.Changed("no-verify") {
		cfg.Verify = !opts.noVerify
	}
	switch opts.metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		return nil, infra.NewErrorStackf("unknown metrics exporter %q", opts.metrics)
	}
	return cfg, cfg.Validate()
}

func setupMetrics(ctx context.Context, cmd *cobra.Command, opts *stressOptions, logger xlog.XLogger) (func(ctx context.Context) error, error) {
	var shutdown func(ctx context.Context) error
	switch opts.metrics {
	case metricsConsole:
		var err error
		if shutdown, err = observability.NewConsoleMetricsExporter(cmd.ErrOrStderr(), 10*time.Second); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "console metrics exporter")
		}
	case metricsPrometheus:
		handler, mpShutdown, err := observability.NewPrometheusMetricsExporter()
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "prometheus metrics exporter")
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(err, "prometheus metrics server stopped", zap.String("addr", opts.metricsAddr))
			}
		}()
		logger.Info("prometheus metrics served", zap.String("addr", opts.metricsAddr))
		shutdown = func(ctx context.Context) error {
			return multierr.Combine(srv.Shutdown(ctx), mpShutdown(ctx))
		}
	default:
		return func(context.Context) error { return nil }, nil
	}
	if err := observability.InitAppStats(ctx, "stress"); err != nil {
		logger.Warn("app stats disabled", zap.Error(err))
	}
	return shutdown, nil
}

func runStress(ctx context.Context, cmd *cobra.Command, cfg *stress.Config, opts *stressOptions) error {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(cmd.ErrOrStderr()),
		xlog.WithXLoggerLevel(xlog.LogLevel(strings.ToUpper(opts.logLevel))),
		xlog.WithXLoggerContextFieldExtract("workload"),
	)
	defer func() {
		_ = logger.Sync()
	}()

	shutdown, err := setupMetrics(ctx, cmd, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Error(err, "metrics shutdown")
		}
	}()

	runner, err := stress.NewRunner(cfg, stress.WithRunnerLogger(logger))
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(),
		"seed: %d\nworkloads: %d\nfailed: %d\nops: %d\nelapsed: %s\n",
		report.Seed, report.Workloads, report.Failed, report.Ops, report.Elapsed.Round(time.Millisecond),
	)
	if err != nil {
		logger.ErrorStack(infra.WrapErrorStack(err), "stress failed")
		return err
	}
	return nil
}
