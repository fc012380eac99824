package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/debris-tracker/core"
	"github.com/signalsfoundry/debris-tracker/internal/classify"
	"github.com/signalsfoundry/debris-tracker/internal/config"
	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/timectrl"
)

type sweepFlags struct {
	group         string
	threshold     float64
	duration      config.Duration
	step          config.Duration
	epoch         string
	maxObjects    int
	includeTypes  []string
	minConfidence float64
	famous        bool
}

func newSweepCommand(a *app) *cobra.Command {
	var f sweepFlags
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Report pairs of objects predicted to pass within the threshold",
		Long: `Load the configured TLE group (plus a few well-known satellites), optionally
classify and filter the objects, then sample every object on a shared time
grid and report each pair whose minimum separation is under the threshold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runSweep(cmd)
		},
	}

	d := config.Default().Sweep
	fl := cmd.Flags()
	fl.StringVar(&f.group, "group", "", "CelesTrak group to check (default from config)")
	fl.Float64Var(&f.threshold, "threshold", d.ThresholdKm, "alert distance in km")
	fl.DurationVar(&f.duration.Duration, "duration", d.Duration.Duration, "look-ahead window")
	fl.DurationVar(&f.step.Duration, "step", d.Step.Duration, "sampling interval")
	fl.StringVar(&f.epoch, "epoch", "", "window start, RFC3339 or YYYY-MM-DD[ HH:MM:SS] UTC (default now)")
	fl.IntVar(&f.maxObjects, "max-objects", d.MaxObjects, "check at most this many objects (0 for all)")
	fl.StringSliceVar(&f.includeTypes, "include-types", nil, "only check objects classified as one of these types")
	fl.Float64Var(&f.minConfidence, "min-confidence", 0, "drop objects classified with lower confidence")
	fl.BoolVar(&f.famous, "famous", d.Famous, "include well-known satellites looked up by name")
	return cmd
}

// apply copies explicitly set flags over the loaded config.
func (f *sweepFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("group") {
		cfg.TLE.Group = f.group
	}
	if fl.Changed("threshold") {
		cfg.Sweep.ThresholdKm = f.threshold
	}
	if fl.Changed("duration") {
		cfg.Sweep.Duration = f.duration
	}
	if fl.Changed("step") {
		cfg.Sweep.Step = f.step
	}
	if fl.Changed("epoch") {
		cfg.Sweep.Epoch = f.epoch
	}
	if fl.Changed("max-objects") {
		cfg.Sweep.MaxObjects = f.maxObjects
	}
	if fl.Changed("include-types") {
		cfg.Sweep.IncludeTypes = f.includeTypes
	}
	if fl.Changed("min-confidence") {
		cfg.Sweep.MinConfidence = f.minConfidence
	}
	if fl.Changed("famous") {
		cfg.Sweep.Famous = f.famous
	}
}

func (a *app) runSweep(cmd *cobra.Command) error {
	cfg := a.cfg.Sweep
	clock, err := timectrl.FromFlag(cfg.Epoch)
	if err != nil {
		return err
	}
	epoch := clock.Now()

	ctx, span := tracer.Start(cmd.Context(), "cli.sweep")
	defer span.End()
	span.SetAttributes(
		attribute.String("sweep.group", a.cfg.TLE.Group),
		attribute.String("sweep.epoch", epoch.Format("2006-01-02T15:04:05Z")),
	)

	catalog, err := a.loadCatalog(ctx, a.cfg.TLE.Group, cfg.Famous)
	if err != nil {
		return err
	}
	if catalog.Len() < 2 {
		a.printer.Warn("Not enough satellites to compare.")
		return nil
	}

	a.classifyCatalog(ctx, catalog)
	objects := catalog.Limit(cfg.MaxObjects)
	if cfg.MaxObjects > 0 && catalog.Len() > cfg.MaxObjects {
		a.log.Info(ctx, "capping sweep set",
			logging.Int("max_objects", cfg.MaxObjects),
			logging.Int("available", catalog.Len()),
		)
	}

	filter := classify.Filter{IncludeTypes: cfg.IncludeTypes, MinConfidence: cfg.MinConfidence}
	objects = filter.Apply(ctx, objects, a.log)
	if len(objects) < 2 {
		a.printer.Warn("Not enough satellites to compare.")
		return nil
	}

	sweeper := core.NewSweeper(core.NewSGP4Source(), core.WithMetrics(a.sweepMetrics))
	sweepCfg := core.SweepConfig{
		Threshold: cfg.ThresholdKm,
		Duration:  cfg.Duration.Duration,
		Step:      cfg.Step.Duration,
		Epoch:     epoch,
	}
	res, err := sweeper.Run(ctx, objects, sweepCfg)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	a.printer.Sweep(res, sweepCfg)
	return nil
}
