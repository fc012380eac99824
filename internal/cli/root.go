// Package cli implements the debris-tracker command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/debris-tracker/internal/config"
	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/internal/observability"
	"github.com/signalsfoundry/debris-tracker/internal/report"
	"github.com/signalsfoundry/debris-tracker/internal/tle"
)

const tracerName = "github.com/signalsfoundry/debris-tracker/internal/cli"

var tracer = otel.Tracer(tracerName)

// app holds resources shared by every command for one invocation.
type app struct {
	configPath  string
	metricsAddr string
	noColor     bool

	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	log     logging.Logger
	printer *report.Printer

	sweepMetrics *observability.SweepCollector
	fetchMetrics *observability.FetchCollector
	metricsSrv   *observability.MetricsServer
	shutdown     func(context.Context) error
}

func newRoot(out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "debris-tracker",
		Short: "Satellite close-approach checks from public TLE data",
		Long: `debris-tracker downloads two-line element sets from CelesTrak, propagates
them with SGP4 and reports pairs of objects predicted to pass within a
distance threshold of each other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a TOML config file (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while the command runs")
	pf.BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newFetchCommand(a),
		newSweepCommand(a),
		newPositionsCommand(a),
		newClassifyCommand(a),
	)
	return root, a
}

// Execute runs the CLI with the process arguments and releases shared
// resources afterwards.
func Execute(ctx context.Context) error {
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, a := newRoot(out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.close(ctx)
	return err
}

// init loads configuration and wires logging, tracing and metrics.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
	a.cfg = cfg

	base := logging.NewFromEnv(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: a.errOut,
	})
	ctx, log := logging.WithRunLogger(cmd.Context(), base.With(logging.String("command", cmd.Name())))
	a.log = log
	a.printer = report.NewPrinter(a.out, a.noColor)

	tracingCfg := observability.TracingConfigFromEnv(observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	shutdown, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	reg := prometheus.NewRegistry()
	if a.sweepMetrics, err = observability.NewSweepCollector(reg); err != nil {
		return err
	}
	if a.fetchMetrics, err = observability.NewFetchCollector(reg); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		srv, err := observability.StartMetricsServer(ctx, cfg.Metrics.Addr,
			observability.NewRouter(a.sweepMetrics.Handler()), log)
		if err != nil {
			return err
		}
		a.metricsSrv = srv
	}

	log.Debug(ctx, "configuration loaded",
		logging.String("path", cfg.Path()),
		logging.String("group", cfg.TLE.Group),
	)
	cmd.SetContext(ctx)
	return nil
}

// close flushes tracing and stops the metrics server. It runs after the
// command context may have been cancelled by a signal, so it detaches from
// that cancellation.
func (a *app) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	a.metricsSrv.Shutdown(ctx)
	if a.shutdown != nil {
		observability.ShutdownWithTimeout(ctx, a.shutdown, a.log)
	}
}

func (a *app) source() *tle.Source {
	return &tle.Source{
		Fetcher:  a.fetcher(),
		Cache:    tle.NewCache(a.cfg.TLE.CacheDir, a.cfg.TLE.MaxFiles, nil),
		MaxAge:   a.cfg.TLE.CacheMaxAge.Duration,
		Log:      a.log,
		Observer: a.fetchMetrics,
	}
}

func (a *app) fetcher() *tle.Fetcher {
	return tle.NewFetcher(a.cfg.TLE.BaseURL, tle.FetcherConfig{
		Timeout:      a.cfg.TLE.Timeout.Duration,
		MaxAttempts:  a.cfg.TLE.MaxAttempts,
		RetryInitial: a.cfg.TLE.RetryInitial.Duration,
		MinInterval:  a.cfg.TLE.MinInterval.Duration,
	}, a.log)
}
