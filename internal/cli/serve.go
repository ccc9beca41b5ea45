package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/server"
	"github.com/psidex/visualizer/internal/stream"
)

func (c *CLI) newServeCmd() *cobra.Command {
	var (
		source  string
		address string
		fetch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the graph document and serve it with its pages",
		Long: `Loads the graph document once, builds every page from it, and serves:

  /               the page built by the configured engine
  /elements.json  the graph document
  /config.json    the merged configuration
  /echarts        an echarts force graph
  /graph.svg      a Graphviz drawing
  /ws             a WebSocket replay of the elements`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != "" {
				c.cfg.Source.URL = source
			}
			if address != "" {
				c.cfg.Server.Address = address
			}
			if cmd.Flags().Changed("fetch") {
				c.cfg.Server.FetchElements = fetch
			}

			list, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			pages, err := c.buildPages(list)
			if err != nil {
				return err
			}

			replayer := stream.NewReplayer(pages["/"].Options().Elements, c.cfg.Stream.Interval.Duration, c.logger)

			srv, err := server.New(server.Config{
				Address:         c.cfg.Server.Address,
				AllowedOrigins:  c.cfg.Server.AllowedOrigins,
				ShutdownTimeout: c.cfg.Server.ShutdownTimeout.Duration,
			}, c.logger, pages["/"].Options().Elements, pages, replayer)
			if err != nil {
				return err
			}

			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "graph document URL or path (overrides source.url)")
	cmd.Flags().StringVarP(&address, "address", "b", "", "the ip:port to bind the webserver to (overrides server.address)")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "make the page fetch /elements.json instead of embedding the elements")

	return cmd
}

// buildPages initializes one visualization per route. The index page uses the
// configured engine and must succeed; the secondary pages are skipped with a warning
// when their engine fails.
func (c *CLI) buildPages(list elements.List) (map[string]graphs.Handle, error) {
	mount, err := c.mount()
	if err != nil {
		return nil, err
	}

	elementsURL := ""
	if c.cfg.Server.FetchElements {
		elementsURL = server.ElementsPath
	}

	index, err := c.engine(c.cfg.Page.Engine, elementsURL)
	if err != nil {
		return nil, err
	}
	h, err := c.initializer(index).Init(mount, list)
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", index.Name(), err)
	}

	pages := map[string]graphs.Handle{"/": h}
	secondary := map[string]string{
		"/config.json": "json",
		"/echarts":     "echarts",
		"/graph.svg":   "dot",
	}
	for path, name := range secondary {
		engine, err := c.engine(name, "")
		if err != nil {
			return nil, err
		}
		h, err := c.initializer(engine).Init(mount, list)
		if err != nil {
			c.logger.Warn("Skipping page", "path", path, "engine", name, "error", err)
			continue
		}
		pages[path] = h
	}

	return pages, nil
}
