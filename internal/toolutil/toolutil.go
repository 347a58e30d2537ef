// Package toolutil provides shared helper functions for go_sentiment MCP tools.
package toolutil

import (
	"strings"
)

// IntOr returns v when it is positive, def otherwise.
func IntOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// ClampInt returns v limited to [1, max]; non-positive v yields def.
func ClampInt(v, def, max int) int {
	v = IntOr(v, def)
	if v > max {
		return max
	}
	return v
}

// CleanList trims every entry and drops empty ones and duplicates,
// keeping first-seen order.
func CleanList(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
