package graphs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"
)

// DefaultHost is the host page used when none is configured. It holds the app
// container and nothing else.
const DefaultHost = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>visualizer</title>
    <style>
        * {
            margin: 0;
        }
        #app {
            width: 100vw;
            height: 100vh;
        }
    </style>
  </head>
  <body>
    <div id="app"></div>
  </body>
</html>`

// Container is a resolved mount point: an element with a known id inside a host
// document. Engines that produce pages render into a fresh copy of the host.
type Container struct {
	ID   string
	host []byte
}

// Host returns a copy of the host document source.
func (c *Container) Host() []byte {
	return bytes.Clone(c.host)
}

// MarshalJSON emits the container id; the page swaps it for the DOM element.
func (c *Container) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.ID)
}

// ResolveMount looks up the element with the given id in host. A host without such an
// element resolves to a nil Container and a nil error; what happens next is up to the
// engine.
func ResolveMount(host []byte, id string) (*Container, error) {
	doc, err := html.Parse(bytes.NewReader(host))
	if err != nil {
		return nil, fmt.Errorf("parse host document: %w", err)
	}
	if findByID(doc, id) == nil {
		return nil, nil
	}
	return &Container{ID: id, host: bytes.Clone(host)}, nil
}

// findByID walks the tree depth first and returns the first element whose id is id.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}

	return nil
}
