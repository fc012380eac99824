package cli

import (
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/debris-tracker/internal/classify"
	"github.com/signalsfoundry/debris-tracker/internal/report"
)

func newClassifyCommand(a *app) *cobra.Command {
	var (
		group string
		list  bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label cached objects as payload, rocket body or debris",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if group == "" {
				group = a.cfg.TLE.Group
			}
			ctx, span := tracer.Start(cmd.Context(), "cli.classify")
			defer span.End()

			catalog, err := a.loadCatalog(ctx, group, false)
			if err != nil {
				return err
			}
			summary := a.classifyCatalog(ctx, catalog)
			if summary == nil {
				a.printer.Warn("Model not available; skipping classification.")
				return nil
			}

			if list {
				for _, obj := range catalog.List() {
					a.printer.Line("%s", report.ObjectLabel(obj))
				}
			}
			a.printer.Line("Classification summary:")
			for _, label := range classify.Labels {
				a.printer.Line("  %-12s %d", label, summary[label])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "CelesTrak group to classify (default from config)")
	cmd.Flags().BoolVar(&list, "list", false, "print every object with its label")
	return cmd
}
