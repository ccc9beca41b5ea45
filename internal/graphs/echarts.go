package graphs

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/psidex/visualizer/internal/elements"
	. "github.com/psidex/visualizer/internal/lib"
	"github.com/psidex/visualizer/internal/style"
)

// ECharts defines an Engine that renders a go-echarts force graph page. Colours, shapes
// and labels come from the resolved stylesheet; the layout options are not used, the
// chart runs its own force simulation.
type ECharts struct{}

var _ Engine = (*ECharts)(nil)

func NewECharts() *ECharts {
	return &ECharts{}
}

func (e *ECharts) Name() string { return "echarts" }

func (e *ECharts) New(o *Options) (Handle, error) {
	nodes, links := e.nodesAndLinks(o)
	return &EChartsPage{Base: NewBase(o), nodes: nodes, links: links}, nil
}

// nodesAndLinks converts the element list. Node names must be unique, so a label shared
// by two nodes falls back to "label (id)", numbered if even that is taken. Self loops and edges already seen in either
// direction are dropped.
func (e *ECharts) nodesAndLinks(o *Options) ([]opts.GraphNode, []opts.GraphLink) {
	names := map[string]string{}
	seenNames := NewSet[string]()
	seenEdges := NewSet[string]()
	nodes := []opts.GraphNode{}
	links := []opts.GraphLink{}

	for _, n := range o.Elements.Nodes() {
		props := style.Cascade(o.Style, n)
		name := labelOf(props, n)
		if !seenNames.Add(name) {
			base := fmt.Sprintf("%s (%s)", name, n.ID())
			name = base
			for i := 2; !seenNames.Add(name); i++ {
				name = fmt.Sprintf("%s %d", base, i)
			}
		}
		names[n.ID()] = name

		node := opts.GraphNode{
			Name:       name,
			Symbol:     symbolOf(props),
			SymbolSize: 30,
		}
		if color, ok := props["background-color"].(string); ok {
			node.ItemStyle = &opts.ItemStyle{Color: color}
		}
		nodes = append(nodes, node)
	}

	for _, edge := range o.Elements.Edges() {
		from, to := edge.Data.String("source"), edge.Data.String("target")
		fromName, okFrom := names[from]
		toName, okTo := names[to]
		if !okFrom || !okTo || from == to {
			continue
		}

		key := from + "\t" + to
		inverseKey := to + "\t" + from
		if seenEdges.Contains(inverseKey) || !seenEdges.Add(key) {
			continue
		}
		links = append(links, opts.GraphLink{Source: fromName, Target: toName})
	}

	return nodes, links
}

func labelOf(props style.Properties, n elements.Element) string {
	if label, ok := props["label"]; ok && label != nil {
		if s := fmt.Sprint(label); s != "" {
			return s
		}
	}
	return n.ID()
}

func symbolOf(props style.Properties) string {
	switch props["shape"] {
	case "rectangle", "square", "round-rectangle":
		return "rect"
	case "triangle":
		return "triangle"
	case "diamond":
		return "diamond"
	}
	return "circle"
}

func graphBase(nodes []opts.GraphNode, links []opts.GraphLink) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "visualizer",
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:     "force",
				Draggable:  opts.Bool(true),
				Roam:       opts.Bool(true),
				Force:      &opts.GraphForce{Repulsion: 400},
				EdgeSymbol: []string{"none", "arrow"},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}

// EChartsPage is a go-echarts page. The chart is rebuilt on every Render since
// go-echarts charts accumulate state while rendering.
type EChartsPage struct {
	Base
	nodes []opts.GraphNode
	links []opts.GraphLink
}

func (p *EChartsPage) ContentType() string { return "text/html; charset=utf-8" }

func (p *EChartsPage) Render(w io.Writer) error {
	page := components.NewPage()
	page.AddCharts(graphBase(p.nodes, p.links))
	return page.Render(w)
}
