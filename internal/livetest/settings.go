// SPDX-License-Identifier: MPL-2.0

package livetest

import "strings"

type (
	// Settings provides typed access to an entry's decoded additionalSettings.
	// Missing or wrongly-typed values fall back to the zero value; schema
	// defaults are applied by the caller where they matter.
	Settings map[string]any

	// LinkStep is one intermediateLink chain element.
	LinkStep struct {
		FilterRegex       string
		SkipSort          bool
		ReverseSort       bool
		SortByLastSegment bool
	}
)

// Bool returns the named key as a boolean.
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// BoolDefault returns the named key as a boolean, or def when absent.
func (s Settings) BoolDefault(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// String returns the named key as a string.
func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// RequestHeaders decodes the requestHeader list into header name/value pairs.
// Each element holds a single "Name: value" string under its own
// requestHeader key, mirroring the installer's storage shape.
func (s Settings) RequestHeaders() map[string]string {
	headers := make(map[string]string)
	list, _ := s["requestHeader"].([]any)
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		headerStr, _ := obj["requestHeader"].(string)
		name, value, found := strings.Cut(headerStr, ": ")
		if !found {
			continue
		}
		headers[name] = value
	}
	return headers
}

// LinkSteps decodes the intermediateLink chain.
func (s Settings) LinkSteps() []LinkStep {
	list, _ := s["intermediateLink"].([]any)
	steps := make([]LinkStep, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		step := LinkStep{}
		step.FilterRegex, _ = obj["customLinkFilterRegex"].(string)
		step.SkipSort, _ = obj["skipSort"].(bool)
		step.ReverseSort, _ = obj["reverseSort"].(bool)
		step.SortByLastSegment, _ = obj["sortByLastLinkSegment"].(bool)
		steps = append(steps, step)
	}
	return steps
}
