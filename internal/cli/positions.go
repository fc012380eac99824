package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/debris-tracker/core"
	"github.com/signalsfoundry/debris-tracker/internal/logging"
	"github.com/signalsfoundry/debris-tracker/model"
	"github.com/signalsfoundry/debris-tracker/timectrl"
)

func newPositionsCommand(a *app) *cobra.Command {
	var (
		group  string
		epoch  string
		limit  int
		famous bool
	)
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Print sub-satellite latitude and longitude for the first objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if group == "" {
				group = a.cfg.TLE.Group
			}
			clock, err := timectrl.FromFlag(epoch)
			if err != nil {
				return err
			}
			ctx, span := tracer.Start(cmd.Context(), "cli.positions")
			defer span.End()

			catalog, err := a.loadCatalog(ctx, group, famous)
			if err != nil {
				return err
			}

			src := core.NewSGP4Source()
			names, positions := subPoints(src, catalog.List(), clock.Now(), limit)
			if len(positions) == 0 {
				a.printer.Warn("No objects could be propagated.")
				return nil
			}
			a.log.Debug(ctx, "positions computed", logging.Int("count", len(positions)))
			a.printer.Positions(names, positions)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&group, "group", "", "CelesTrak group to list (default from config)")
	fl.StringVar(&epoch, "epoch", "", "time to evaluate positions at (default now)")
	fl.IntVar(&limit, "limit", 10, "number of objects to print")
	fl.BoolVar(&famous, "famous", false, "list well-known satellites first")
	return cmd
}

// subPoints returns the geodetic positions of the first limit objects that
// propagate at t. Objects that fail are passed over.
func subPoints(src *core.SGP4Source, objects []model.SpaceObject, t time.Time, limit int) ([]string, []core.GeodeticPosition) {
	var (
		names     []string
		positions []core.GeodeticPosition
	)
	for _, obj := range objects {
		if limit > 0 && len(positions) >= limit {
			break
		}
		pos, err := src.Geodetic(obj, t)
		if err != nil {
			continue
		}
		names = append(names, obj.Name)
		positions = append(positions, pos)
	}
	return names, positions
}
