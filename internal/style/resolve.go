package style

import (
	"fmt"

	"github.com/psidex/visualizer/internal/elements"
)

// computedKeyPrefix namespaces the data fields Resolve writes into elements.
const computedKeyPrefix = "__style_"

// ComputedKey is the data field holding the value of a computed property for the rule
// at the given index.
func ComputedKey(ruleIndex int, property string) string {
	return fmt.Sprintf("%s%d_%s", computedKeyPrefix, ruleIndex, property)
}

// Resolve turns rules into a stylesheet that is pure data. Each computed property is
// evaluated for every element its selector matches, the result is stored in the
// element's data under ComputedKey, and the rule maps the property to that field.
// The returned list is a copy; list itself is never modified.
func Resolve(rules []Rule, list elements.List) ([]Sheet, elements.List, error) {
	out := list.Clone()
	sheets := make([]Sheet, 0, len(rules))

	for i, rule := range rules {
		props := make(Properties, len(rule.Static)+len(rule.Computed))
		for k, v := range rule.Static {
			props[k] = v
		}

		if rule.IsComputed() {
			sel, err := elements.ParseSelector(rule.Selector)
			if err != nil {
				return nil, nil, fmt.Errorf("style rule %d: %w", i, err)
			}
			for property, fn := range rule.Computed {
				key := ComputedKey(i, property)
				for j := range out {
					if !sel.Matches(out[j]) {
						continue
					}
					if out[j].Data == nil {
						out[j].Data = elements.Data{}
					}
					out[j].Data[key] = fn(out[j].Data)
				}
				props[property] = fmt.Sprintf("data(%s)", key)
			}
		}

		sheets = append(sheets, Sheet{Selector: rule.Selector, Style: props})
	}

	return sheets, out, nil
}

// Cascade returns the effective properties for one element of a resolved sheet, later
// rules overriding earlier ones. Data mappers are substituted with the element's data.
// Renderers that cannot run the browser engine's cascade use this.
func Cascade(sheets []Sheet, e elements.Element) Properties {
	props := Properties{}
	for _, sheet := range sheets {
		sel, err := elements.ParseSelector(sheet.Selector)
		if err != nil || !sel.Matches(e) {
			continue
		}
		for k, v := range sheet.Style {
			props[k] = v
		}
	}
	for k, v := range props {
		if s, ok := v.(string); ok {
			if field, ok := dataMapper(s); ok {
				props[k] = e.Data[field]
			}
		}
	}
	return props
}

// dataMapper extracts the field name from "data(field)".
func dataMapper(s string) (string, bool) {
	const prefix, suffix = "data(", ")"
	if len(s) <= len(prefix)+len(suffix) || s[:len(prefix)] != prefix || s[len(s)-1:] != suffix {
		return "", false
	}
	return s[len(prefix) : len(s)-1], true
}
