package elements

import (
	"fmt"
	"strings"
)

// Selector is a parsed subset of the Cytoscape selector language: a comma separated
// list of simple selectors, each an optional group ("node", "edge" or "*") followed by
// zero or more ".Class" qualifiers.
type Selector struct {
	raw  string
	alts []simpleSelector
}

type simpleSelector struct {
	group   string // "", "node" or "edge"
	classes []string
}

// ParseSelector parses s. Attribute and state selectors are not supported and are
// reported as errors so that a rule never silently matches nothing.
func ParseSelector(s string) (Selector, error) {
	sel := Selector{raw: s}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Selector{}, fmt.Errorf("empty selector in %q", s)
		}
		if strings.ContainsAny(part, "[]:#> ") {
			return Selector{}, fmt.Errorf("unsupported selector %q", part)
		}

		pieces := strings.Split(part, ".")
		simple := simpleSelector{}
		switch pieces[0] {
		case "", "*":
		case "node", "edge":
			simple.group = pieces[0]
		default:
			return Selector{}, fmt.Errorf("unknown element group %q in selector %q", pieces[0], part)
		}
		for _, class := range pieces[1:] {
			if class == "" {
				return Selector{}, fmt.Errorf("empty class in selector %q", part)
			}
			simple.classes = append(simple.classes, class)
		}
		sel.alts = append(sel.alts, simple)
	}
	return sel, nil
}

func (s Selector) String() string { return s.raw }

// Matches reports whether any alternative matches e. Opaque entries match nothing.
func (s Selector) Matches(e Element) bool {
	if e.Opaque() {
		return false
	}
	for _, alt := range s.alts {
		if alt.matches(e) {
			return true
		}
	}
	return false
}

func (s simpleSelector) matches(e Element) bool {
	switch s.group {
	case "node":
		if e.IsEdge() {
			return false
		}
	case "edge":
		if !e.IsEdge() {
			return false
		}
	}
	for _, class := range s.classes {
		if !e.Classes.Has(class) {
			return false
		}
	}
	return true
}
