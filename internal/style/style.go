// Package style holds the graph stylesheet: ordered rules pairing a selector with
// either static properties or a property computed from the element's data.
package style

import (
	"strings"

	"github.com/psidex/visualizer/internal/elements"
)

// Properties maps style property names to literal values or data mappers such as
// "data(label)".
type Properties map[string]any

// ComputeFunc derives a property value from an element's data. It must be pure and
// total: every data map, including an empty one, yields a value.
type ComputeFunc func(elements.Data) any

// Rule is one stylesheet entry. Later rules override earlier ones for overlapping
// properties.
type Rule struct {
	Selector string
	// Static properties are emitted as they are.
	Static Properties
	// Computed properties are evaluated per matching element by Resolve.
	Computed map[string]ComputeFunc
}

// Static returns a rule made only of literal properties.
func Static(selector string, props Properties) Rule {
	return Rule{Selector: selector, Static: props}
}

// Computed returns a rule whose single property is computed from element data,
// alongside any static properties.
func Computed(selector string, static Properties, property string, fn ComputeFunc) Rule {
	return Rule{
		Selector: selector,
		Static:   static,
		Computed: map[string]ComputeFunc{property: fn},
	}
}

// IsComputed reports whether the rule needs resolving before it can be serialised.
func (r Rule) IsComputed() bool {
	return len(r.Computed) > 0
}

// Sheet is a resolved stylesheet entry in the engine's wire format.
type Sheet struct {
	Selector string     `json:"selector"`
	Style    Properties `json:"style"`
}

// Default returns the built-in stylesheet. A fresh copy is returned on every call.
func Default() []Rule {
	return []Rule{
		Static("node", Properties{
			"background-color": "#807FD0",
			"label":            "data(label)",
			"width":            120,
			"height":           120,
			"text-valign":      "center",
			"text-wrap":        "wrap",
			"text-max-width":   100,
		}),
		Computed(".Canonical", Properties{
			"background-color": "#F96E48",
			"shape":            "rectangle",
		}, "label", CanonicalLabel),
		Static(".ImageBlob", Properties{
			"background-color": "#C7DBAB",
			"label":            "data(title)",
		}),
		Static(".Person", Properties{
			"background-color": "#B4ECE5",
			"label":            "data(name)",
		}),
		Static(".RawMetadataBlob", Properties{
			"background-color": "#5E5479",
			"label":            "Raw Metadata",
		}),
		Static("edge", Properties{
			"label":              "data(label)",
			"width":              3,
			"line-color":         "#ccc",
			"target-arrow-color": "#ccc",
			"target-arrow-shape": "triangle",
		}),
	}
}

// CanonicalLabel breaks a canonical id after every dash so the label wraps inside the
// node: "a-b-c" becomes "a- b- c". A missing or non-string id gives "".
func CanonicalLabel(data elements.Data) any {
	return strings.Join(strings.Split(data.String("canonicalID"), "-"), "- ")
}
