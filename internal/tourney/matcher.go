// Package tourney resolves a pasted list of player names against both
// ranked collections for tournament seeding.
package tourney

import (
	"math"
	"slices"
	"strings"

	"github.com/dcimring/pickleball-ratings/internal/models"
)

// ParseNames splits pasted text into one trimmed name per non-blank line.
// Both \r and \n end a line. Duplicates are kept.
func ParseNames(raw string) []string {
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

func nameKey(s string) string {
	return strings.ToLower(s)
}

// FindByName returns the first entry of c whose name equals name, ignoring
// case. Names are not guaranteed unique within a collection; the earliest
// entry in collection order wins.
func FindByName(c models.Collection, name string) (models.RankingEntry, bool) {
	key := nameKey(name)
	for _, e := range c {
		if nameKey(e.PlayerName) == key {
			return e, true
		}
	}
	return models.RankingEntry{}, false
}

// index maps each lowercased name to its first entry
type index map[string]models.Standing

func buildIndex(c models.Collection) index {
	idx := make(index, len(c))
	for _, e := range c {
		key := nameKey(e.PlayerName)
		if _, ok := idx[key]; ok {
			continue
		}
		idx[key] = models.Standing{Rank: e.RankPosition, Rating: e.Rating}
	}
	return idx
}

func (idx index) lookup(name string) *models.Standing {
	s, ok := idx[nameKey(name)]
	if !ok {
		return nil
	}
	return &s
}

// DoublesOrderKey is the report ordering key: the doubles rank, or
// math.MaxInt when the name has no doubles entry.
func DoublesOrderKey(r models.TourneyMatchResult) int {
	if r.Doubles == nil {
		return math.MaxInt
	}
	return r.Doubles.Rank
}

// Resolve looks every name up in both collections and orders the rows by
// doubles rank. Unmatched rows keep their input order at the end.
func Resolve(names []string, singles, doubles models.Collection) []models.TourneyMatchResult {
	singlesIdx := buildIndex(singles)
	doublesIdx := buildIndex(doubles)

	results := make([]models.TourneyMatchResult, 0, len(names))
	for _, name := range names {
		results = append(results, models.TourneyMatchResult{
			Name:    name,
			Singles: singlesIdx.lookup(name),
			Doubles: doublesIdx.lookup(name),
		})
	}

	slices.SortStableFunc(results, func(a, b models.TourneyMatchResult) int {
		ka, kb := DoublesOrderKey(a), DoublesOrderKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return results
}

// Check parses raw and resolves the names against both collections
func Check(raw string, singles, doubles models.Collection) []models.TourneyMatchResult {
	return Resolve(ParseNames(raw), singles, doubles)
}
