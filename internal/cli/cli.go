// Package cli implements the visualizer command-line interface.
//
// Commands:
//   - serve: load the graph document once and serve the pages built from it
//   - render: load the graph document and write one page to a file
//   - snapshot: capture a served page as PNG with headless Chrome
//   - version: print the build version
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/visualizer/internal/config"
	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/graphs/cytoscape"
	"github.com/psidex/visualizer/internal/layout"
	"github.com/psidex/visualizer/internal/lib"
	"github.com/psidex/visualizer/internal/loader"
	"github.com/psidex/visualizer/internal/visualizer"
)

// CLI holds state shared by all commands. It is filled in by the root command's
// PersistentPreRunE, before any subcommand runs.
type CLI struct {
	stderr     io.Writer
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func New(stderr io.Writer) *CLI {
	return &CLI{stderr: stderr}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "visualizer",
		Short:         "visualizer renders graph documents with Cytoscape.js",
		Long:          `visualizer loads a JSON graph element list and renders it in the browser with Cytoscape.js and the cola force-directed layout, or as static echarts, Graphviz or JSON output.`,
		Version:       lib.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.newServeCmd())
	root.AddCommand(c.newRenderCmd())
	root.AddCommand(c.newSnapshotCmd())
	root.AddCommand(c.newVersionCmd())

	return root
}

// setup loads the configuration, builds the logger and registers the layout extension.
// It is the only place the process-wide layout registry is written.
func (c *CLI) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}

	level, err := lib.ParseSLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = lib.NiceLogger(c.stderr, level)

	layout.Register(layout.ColaExtension)
	for _, ext := range layout.Registered() {
		c.logger.Debug("Layout extension available", "name", ext.Name, "scripts", len(ext.Scripts))
	}
	return nil
}

// newLoader builds the Loader from the source config.
func (c *CLI) newLoader() *loader.Loader {
	opts := []loader.Option{loader.WithLogger(c.logger)}
	if c.cfg.Source.RandomUserAgent {
		opts = append(opts, loader.WithRandomUserAgent())
	}
	return loader.New(&http.Client{Timeout: c.cfg.Source.Timeout.Duration}, opts...)
}

// load starts the one fetch of the graph document and waits for it.
func (c *CLI) load(ctx context.Context) (elements.List, error) {
	p := newProgress(c.logger)
	list, err := c.newLoader().Start(ctx, c.cfg.Source.URL).Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.cfg.Source.URL, err)
	}
	p.done(fmt.Sprintf("Loaded %d elements", len(list)), "source", c.cfg.Source.URL)
	return list, nil
}

// mount resolves the configured container in the host page. A missing container is
// not an error here; the engine decides.
func (c *CLI) mount() (*graphs.Container, error) {
	host, err := c.cfg.HostDocument()
	if err != nil {
		return nil, err
	}
	if host == nil {
		host = []byte(graphs.DefaultHost)
	}
	mount, err := graphs.ResolveMount(host, c.cfg.Page.Container)
	if err != nil {
		return nil, err
	}
	if mount == nil {
		c.logger.Warn("Container not found in host page", "container", c.cfg.Page.Container)
	}
	return mount, nil
}

// engine returns the named engine. elementsURL is only used by cytoscape.
func (c *CLI) engine(name, elementsURL string) (graphs.Engine, error) {
	switch name {
	case "cytoscape":
		e := cytoscape.NewEngine()
		e.ScriptURL = c.cfg.Page.CytoscapeURL
		e.ElementsURL = elementsURL
		return e, nil
	case "echarts":
		return graphs.NewECharts(), nil
	case "dot":
		return graphs.Dot{}, nil
	case "json":
		return graphs.JSON{}, nil
	}
	return nil, fmt.Errorf("unknown engine %q", name)
}

func (c *CLI) initializer(engine graphs.Engine) *visualizer.Initializer {
	return visualizer.New(engine,
		visualizer.WithLayout(c.cfg.Layout),
		visualizer.WithLogger(c.logger),
	)
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return New(os.Stderr).RootCommand().ExecuteContext(ctx)
}
