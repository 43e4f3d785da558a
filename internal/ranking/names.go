package ranking

import (
	"sort"
	"strings"

	"github.com/dcimring/pickleball-ratings/internal/models"
)

// DistinctNames returns every player name of both modes once, sorted
func DistinctNames(s models.Snapshot) []string {
	seen := make(map[string]struct{}, len(s.Singles)+len(s.Doubles))
	names := make([]string, 0, len(s.Singles)+len(s.Doubles))
	for _, c := range []models.Collection{s.Singles, s.Doubles} {
		for _, e := range c {
			if _, ok := seen[e.PlayerName]; ok {
				continue
			}
			seen[e.PlayerName] = struct{}{}
			names = append(names, e.PlayerName)
		}
	}
	sort.Strings(names)
	return names
}

// SuggestNames returns up to limit names containing input, keeping the
// order of names. Blank input yields no suggestions.
func SuggestNames(names []string, input string, limit int) []string {
	input = strings.TrimSpace(input)
	if input == "" || limit <= 0 {
		return nil
	}

	var out []string
	for _, name := range names {
		if !MatchesSearch(name, input) {
			continue
		}
		out = append(out, name)
		if len(out) == limit {
			break
		}
	}
	return out
}
