package cli

import (
	"github.com/spf13/cobra"
)

func newFetchCommand(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest TLE data into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if group == "" {
				group = a.cfg.TLE.Group
			}
			ctx, span := tracer.Start(cmd.Context(), "cli.fetch")
			defer span.End()

			path, n, err := a.source().Refresh(ctx, group)
			if err != nil {
				return err
			}
			a.printer.Success("TLE data saved to %s (%d objects)", path, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "CelesTrak group to download (default from config)")
	return cmd
}
