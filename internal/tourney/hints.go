package tourney

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Closest returns up to limit names from pool that fuzzily match name,
// best match first.
func Closest(name string, pool []string, limit int) []string {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || len(pool) == 0 || limit <= 0 {
		return nil
	}

	targets := make([]string, len(pool))
	for i, p := range pool {
		targets[i] = strings.ToLower(p)
	}

	matches := fuzzy.Find(query, targets)
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, pool[m.Index])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
