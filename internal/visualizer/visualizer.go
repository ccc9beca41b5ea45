// Package visualizer merges a graph element list with the stylesheet and the static
// viewport and layout configuration, and hands the result to an engine.
package visualizer

import (
	"fmt"
	"log/slog"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/layout"
	"github.com/psidex/visualizer/internal/lib"
	"github.com/psidex/visualizer/internal/style"
)

// DefaultContainerID is the id of the page element the graph mounts into.
const DefaultContainerID = "app"

// Initializer builds visualizations. It holds only static configuration and is safe
// for concurrent use.
type Initializer struct {
	engine   graphs.Engine
	viewport graphs.Viewport
	layout   layout.Options
	logger   *slog.Logger
}

type Option func(*Initializer)

// WithViewport replaces the viewport and interaction options.
func WithViewport(v graphs.Viewport) Option {
	return func(i *Initializer) { i.viewport = v }
}

// WithLayout spreads overrides over the cola defaults.
func WithLayout(overrides layout.Options) Option {
	return func(i *Initializer) { i.layout = i.layout.With(overrides) }
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Initializer) { i.logger = l }
}

func New(engine graphs.Engine, opts ...Option) *Initializer {
	i := &Initializer{
		engine:   engine,
		viewport: graphs.DefaultViewport(),
		layout:   layout.Cola(),
		logger:   lib.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Options merges everything into the configuration the engine receives. Omitting
// styles selects style.Default(). Computed style properties are resolved against the
// list, so the result is plain data; list itself is not modified.
func (i *Initializer) Options(mount *graphs.Container, list elements.List, styles ...style.Rule) (*graphs.Options, error) {
	if len(styles) == 0 {
		styles = style.Default()
	}

	sheets, resolved, err := style.Resolve(styles, list)
	if err != nil {
		return nil, err
	}

	return &graphs.Options{
		Viewport:  i.viewport,
		Container: mount,
		Elements:  resolved,
		Style:     sheets,
		Layout:    i.layout.With(nil),
	}, nil
}

// Init constructs one visualization bound to mount. Engine failures, including a nil
// mount, are returned as they are.
func (i *Initializer) Init(mount *graphs.Container, list elements.List, styles ...style.Rule) (graphs.Handle, error) {
	opts, err := i.Options(mount, list, styles...)
	if err != nil {
		return nil, fmt.Errorf("build %s options: %w", i.engine.Name(), err)
	}

	h, err := i.engine.New(opts)
	if err != nil {
		return nil, err
	}

	i.logger.Info("Initialized visualization",
		"engine", i.engine.Name(),
		"id", h.ID(),
		"nodes", len(opts.Elements.Nodes()),
		"edges", len(opts.Elements.Edges()),
	)
	return h, nil
}
