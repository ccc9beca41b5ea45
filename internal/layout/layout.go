// Package layout holds layout options and the process-wide registry of layout
// extensions the browser engine must load before it can run them.
package layout

import (
	"maps"
	"slices"
	"sync"
)

// Options is a flat option map handed opaquely to the layout engine. "name" selects
// the layout.
type Options map[string]any

// Name returns the layout name, "" when unset.
func (o Options) Name() string {
	name, _ := o["name"].(string)
	return name
}

// With returns a deep copy of o with overrides spread over it. Nested maps and slices
// are copied too, so the result shares nothing with o or overrides.
func (o Options) With(overrides Options) Options {
	out := make(Options, len(o)+len(overrides))
	for k, v := range o {
		out[k] = deepCopy(v)
	}
	for k, v := range overrides {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, nested := range value {
			out[k] = deepCopy(nested)
		}
		return out
	case Options:
		return value.With(nil)
	case []any:
		out := make([]any, len(value))
		for i, nested := range value {
			out[i] = deepCopy(nested)
		}
		return out
	}
	return v
}

// Cola returns the force-directed cola layout defaults.
func Cola() Options {
	return Options{
		"name":          ColaName,
		"avoidOverlaps": true,
		"flow": map[string]any{
			"axis":          "y",
			"minSeparation": 120,
		},
		"nodeSpacing":       120,
		"edgeLengthVal":     80,
		"animate":           true,
		"randomize":         false,
		"maxSimulationTime": 1500,
	}
}

// Layouts that ship with Cytoscape itself and need no extension.
var builtin = []string{"null", "random", "preset", "grid", "circle", "concentric", "breadthfirst", "cose"}

// IsBuiltin reports whether the browser engine provides the layout natively.
func IsBuiltin(name string) bool {
	return slices.Contains(builtin, name)
}

// Extension is a layout plugin: the scripts that define it, in load order, and the
// expression registering it with the engine.
type Extension struct {
	Name     string
	Scripts  []string
	Register string
}

const ColaName = "cola"

// ColaExtension is cytoscape-cola on top of WebCola.
var ColaExtension = Extension{
	Name: ColaName,
	Scripts: []string{
		"https://unpkg.com/webcola@3.4.0/WebCola/cola.min.js",
		"https://unpkg.com/cytoscape-cola@2.5.1/cytoscape-cola.js",
	},
	Register: "cytoscape.use(cytoscapeCola);",
}

// Registry records which extensions have been registered. The zero value is ready to
// use.
type Registry struct {
	mu   sync.RWMutex
	exts map[string]Extension
}

// Register adds ext. It reports false, and changes nothing, when an extension with the
// same name is already registered.
func (r *Registry) Register(ext Extension) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exts == nil {
		r.exts = make(map[string]Extension)
	}
	if _, ok := r.exts[ext.Name]; ok {
		return false
	}
	r.exts[ext.Name] = ext
	return true
}

// Lookup returns the registered extension named name.
func (r *Registry) Lookup(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.exts[name]
	return ext, ok
}

// Registered returns the registered extensions sorted by name.
func (r *Registry) Registered() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, 0, len(r.exts))
	for _, name := range slices.Sorted(maps.Keys(r.exts)) {
		out = append(out, r.exts[name])
	}
	return out
}

var global Registry

// Register registers ext with the process-wide registry. The entry point calls this
// once at startup; repeated calls are no-ops.
func Register(ext Extension) bool { return global.Register(ext) }

// Registered lists the process-wide registry.
func Registered() []Extension { return global.Registered() }

// Default returns the process-wide registry.
func Default() *Registry { return &global }
