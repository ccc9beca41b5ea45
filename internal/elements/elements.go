// Package elements models the Cytoscape graph element list: ordered node and edge
// descriptors, each a data map plus a set of class tags used for style selection.
package elements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// Data holds an element's fields. Values are whatever the JSON decoder produced.
type Data map[string]any

// String returns the field as a string, or "" when it is missing or not a string.
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Position is a model position in graph coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Classes is a list of class tags. It decodes from either a space separated string
// or an array of strings, and always encodes as an array. No tags decode to nil.
type Classes []string

func (c *Classes) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case nil:
		*c = nil
	case string:
		*c = strings.Fields(value)
		if len(*c) == 0 {
			*c = nil
		}
	case []any:
		out := make(Classes, 0, len(value))
		for _, v := range value {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("invalid class tag: %#v", v)
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			out = nil
		}
		*c = out
	default:
		return fmt.Errorf("invalid classes: %#v", raw)
	}

	return nil
}

// Has reports whether the class tag is present.
func (c Classes) Has(class string) bool {
	for _, existing := range c {
		if existing == class {
			return true
		}
	}
	return false
}

// Element is one node or edge descriptor. Keys the struct does not model, such as
// scratch, renderedPosition or style, are kept in Extra and written back out
// unchanged. An array entry that is not a JSON object is kept verbatim in Raw; such an
// entry is Opaque and is neither a node nor an edge.
type Element struct {
	Group      string    `json:"group,omitempty"`
	Data       Data      `json:"data"`
	Classes    Classes   `json:"classes,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Selected   bool      `json:"selected,omitempty"`
	Selectable *bool     `json:"selectable,omitempty"`
	Locked     bool      `json:"locked,omitempty"`
	Grabbable  *bool     `json:"grabbable,omitempty"`
	Pannable   *bool     `json:"pannable,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
	Raw   json.RawMessage            `json:"-"`
}

// elementFields has Element's layout without its methods.
type elementFields Element

// modelled lists the keys decoded into Element's fields.
var modelled = []string{"group", "data", "classes", "position", "selected", "selectable", "locked", "grabbable", "pannable"}

func (e *Element) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		raw, err := normalize(trimmed)
		if err != nil {
			return err
		}
		*e = Element{Raw: raw}
		return nil
	}

	var fields elementFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	err := json.Unmarshal(trimmed, &all)
	if err != nil {
		return err
	}
	for _, key := range modelled {
		delete(all, key)
	}
	for k, v := range all {
		if all[k], err = normalize(v); err != nil {
			return err
		}
	}

	*e = Element(fields)
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

func (e Element) MarshalJSON() ([]byte, error) {
	if e.Raw != nil {
		return e.Raw, nil
	}

	b, err := json.Marshal(elementFields(e))
	if err != nil || len(e.Extra) == 0 {
		return b, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// normalize compacts raw and escapes it the way json.Marshal does, so that a kept value
// decodes back to the same bytes after being written out.
func normalize(raw []byte) (json.RawMessage, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	json.HTMLEscape(&out, compact.Bytes())
	return out.Bytes(), nil
}

// Opaque reports whether the entry was not a JSON object.
func (e Element) Opaque() bool {
	return e.Raw != nil
}

// IsEdge follows Cytoscape's rules: an explicit group wins, otherwise an element with
// both a source and a target is an edge.
func (e Element) IsEdge() bool {
	if e.Opaque() {
		return false
	}
	switch e.Group {
	case GroupEdges:
		return true
	case GroupNodes:
		return false
	}
	_, hasSource := e.Data["source"]
	_, hasTarget := e.Data["target"]
	return hasSource && hasTarget
}

// ID returns the element's id field, "" if it has none.
func (e Element) ID() string {
	return e.Data.String("id")
}

// List is an ordered graph element list. No identity or uniqueness invariants are
// enforced, that is left to the engine and to whatever produced the document.
type List []Element

// Nodes returns the node elements in order. Opaque entries are skipped.
func (l List) Nodes() List {
	var out List
	for _, e := range l {
		if !e.Opaque() && !e.IsEdge() {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns the edge elements in order.
func (l List) Edges() List {
	var out List
	for _, e := range l {
		if e.IsEdge() {
			out = append(out, e)
		}
	}
	return out
}

// Clone deep copies the list so that callers may annotate data without touching the
// value they were given.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, e := range l {
		c := e
		if e.Data != nil {
			c.Data = make(Data, len(e.Data))
			for k, v := range e.Data {
				c.Data[k] = v
			}
		}
		if e.Classes != nil {
			c.Classes = append(Classes(nil), e.Classes...)
		}
		if e.Position != nil {
			p := *e.Position
			c.Position = &p
		}
		c.Selectable = cloneBool(e.Selectable)
		c.Grabbable = cloneBool(e.Grabbable)
		c.Pannable = cloneBool(e.Pannable)
		if e.Extra != nil {
			c.Extra = make(map[string]json.RawMessage, len(e.Extra))
			for k, v := range e.Extra {
				c.Extra[k] = bytes.Clone(v)
			}
		}
		if e.Raw != nil {
			c.Raw = bytes.Clone(e.Raw)
		}
		out[i] = c
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Decode parses a graph document. Beyond being a JSON array, and the modelled keys
// having their Cytoscape types, nothing about the entries is checked.
func Decode(b []byte) (List, error) {
	var list List
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}
