package graphs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	. "github.com/psidex/visualizer/internal/lib"
	"github.com/psidex/visualizer/internal/style"
)

// Dot defines an Engine that lays the graph out with Graphviz and renders a static
// SVG. Node colours, shapes and labels come from the resolved stylesheet.
type Dot struct{}

var _ Engine = Dot{}

func (Dot) Name() string { return "dot" }

func (Dot) New(o *Options) (Handle, error) {
	src := ToDOT(o)
	svg, err := renderSVG(context.Background(), src)
	if err != nil {
		return nil, err
	}
	return &SVG{Base: NewBase(o), svg: svg}, nil
}

// ToDOT converts the element list to Graphviz DOT. Element ids are replaced by short
// generated identifiers so arbitrary ids never need escaping; edges whose endpoints are
// not in the list are dropped.
func ToDOT(o *Options) string {
	ids := NewIDs("n")
	nodes := NewSet[string]()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontname=\"Helvetica\", fillcolor=\"#807FD0\"];\n")
	buf.WriteString("  edge [color=\"#cccccc\", fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, n := range o.Elements.Nodes() {
		nodes.Add(n.ID())
		props := style.Cascade(o.Style, n)
		attrs := []string{fmt.Sprintf("label=%q", labelOf(props, n))}
		if color, ok := props["background-color"].(string); ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
		}
		attrs = append(attrs, "shape="+dotShape(props))
		fmt.Fprintf(&buf, "  %s [%s];\n", ids.Get(n.ID()), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range o.Elements.Edges() {
		source, target := e.Data.String("source"), e.Data.String("target")
		if !nodes.Contains(source) || !nodes.Contains(target) {
			continue
		}
		from, to := ids.Get(source), ids.Get(target)
		props := style.Cascade(o.Style, e)
		if label, ok := props["label"]; ok && label != nil && fmt.Sprint(label) != "" {
			fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", from, to, fmt.Sprint(label))
		} else {
			fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotShape(props style.Properties) string {
	switch props["shape"] {
	case "rectangle", "square", "round-rectangle":
		return "box"
	case "triangle":
		return "triangle"
	case "diamond":
		return "diamond"
	}
	return "ellipse"
}

func renderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// SVG is a rendered Graphviz drawing.
type SVG struct {
	Base
	svg []byte
}

func (s *SVG) ContentType() string { return "image/svg+xml" }

func (s *SVG) Render(w io.Writer) error {
	_, err := w.Write(s.svg)
	return err
}
