package history

import "strings"

// DefaultCap is the number of recent searches retained per shopper.
const DefaultCap = 5

// Record adds a search term to the front of a most-recent-first log and
// returns the updated log. The term is trimmed before insertion; any
// case-insensitive duplicate already present is removed so the log never
// holds the same term twice, and the result is truncated to max entries.
// Blank terms leave the log unchanged. The input slice is not modified.
func Record(log []string, term string, max int) []string {
	if max <= 0 {
		max = DefaultCap
	}

	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return append([]string(nil), log...)
	}

	out := make([]string, 0, len(log)+1)
	out = append(out, trimmed)
	for _, prev := range log {
		if strings.EqualFold(prev, trimmed) {
			continue
		}
		out = append(out, prev)
	}

	if len(out) > max {
		out = out[:max]
	}
	return out
}
