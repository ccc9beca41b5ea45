// Package cytoscape renders a host page that mounts Cytoscape.js into the configured
// container.
package cytoscape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/layout"
)

const DefaultScriptURL = "https://unpkg.com/cytoscape@3.30.2/dist/cytoscape.min.js"

// Engine defines a graphs.Engine producing an HTML page.
type Engine struct {
	// ScriptURL is where the page loads Cytoscape.js from.
	ScriptURL string
	// ElementsURL, when set, makes the page fetch its elements from that URL in the
	// browser instead of embedding them.
	ElementsURL string
	// Registry resolves layout extensions. Nil means the process-wide registry.
	Registry *layout.Registry
}

var _ graphs.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{ScriptURL: DefaultScriptURL}
}

func (e *Engine) Name() string { return "cytoscape" }

func (e *Engine) New(opts *graphs.Options) (graphs.Handle, error) {
	if opts.Container == nil {
		return nil, graphs.ErrNoContainer
	}

	registry := e.Registry
	if registry == nil {
		registry = layout.Default()
	}

	scripts := []string{e.ScriptURL}
	register := ""
	if name := opts.Layout.Name(); !layout.IsBuiltin(name) {
		ext, ok := registry.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", graphs.ErrUnknownLayout, name)
		}
		scripts = append(scripts, ext.Scripts...)
		register = ext.Register
	}

	page, err := e.page(opts, scripts, register)
	if err != nil {
		return nil, err
	}

	return &Page{Base: graphs.NewBase(opts), page: page}, nil
}

// page renders a fresh copy of the host document with the scripts appended to its
// body.
func (e *Engine) page(opts *graphs.Options, scripts []string, register string) ([]byte, error) {
	data := scriptData{Register: register}

	config := *opts
	if e.ElementsURL != "" {
		config.Elements = nil
		u, err := json.Marshal(e.ElementsURL)
		if err != nil {
			return nil, err
		}
		data.ElementsURL = string(u)
	}
	configJson, err := json.Marshal(&config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	data.Config = string(configJson)

	var js bytes.Buffer
	if err := initScript.Execute(&js, data); err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(opts.Container.Host()))
	if err != nil {
		return nil, fmt.Errorf("parse host document: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, fmt.Errorf("host document has no body")
	}

	for _, src := range scripts {
		body.AppendChild(scriptNode(src, ""))
	}
	body.AppendChild(scriptNode("", js.String()))

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func scriptNode(src, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: "type", Val: "text/javascript"}},
	}
	if src != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "src", Val: src})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

// Page is a rendered cytoscape host page.
type Page struct {
	graphs.Base
	page []byte
}

func (p *Page) ContentType() string { return "text/html; charset=utf-8" }

func (p *Page) Render(w io.Writer) error {
	_, err := w.Write(p.page)
	return err
}
