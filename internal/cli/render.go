package cli

import (
	"github.com/spf13/cobra"

	"github.com/psidex/visualizer/internal/graphs"
)

func (c *CLI) newRenderCmd() *cobra.Command {
	var (
		source string
		engine string
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load the graph document and write one page to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != "" {
				c.cfg.Source.URL = source
			}
			if engine != "" {
				c.cfg.Page.Engine = engine
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			list, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			mount, err := c.mount()
			if err != nil {
				return err
			}
			e, err := c.engine(c.cfg.Page.Engine, "")
			if err != nil {
				return err
			}
			h, err := c.initializer(e).Init(mount, list)
			if err != nil {
				return err
			}

			written, err := graphs.RenderToFile(h, output)
			if err != nil {
				return err
			}
			c.logger.Info("Wrote visualization", "file", written, "engine", e.Name())
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "graph document URL or path (overrides source.url)")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "cytoscape, echarts, dot or json (overrides page.engine)")
	cmd.Flags().StringVarP(&output, "output", "o", "visualization", "output file name without extension")

	return cmd
}
