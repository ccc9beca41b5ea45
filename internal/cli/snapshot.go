package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/visualizer/internal/snapshot"
)

func (c *CLI) newSnapshotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot URL",
		Short: "Capture a rendered page as PNG with headless Chrome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := snapshot.DefaultOptions()
			opts.ContainerID = c.cfg.Page.Container
			opts.Timeout = c.cfg.Snapshot.Timeout.Duration
			opts.Settle = c.cfg.Snapshot.Settle.Duration
			opts.Quality = c.cfg.Snapshot.Quality
			opts.Logger = c.logger

			result, err := snapshot.Capture(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return os.WriteFile(output, result.PNG, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "snapshot.png", "output PNG file")

	return cmd
}
