// Package ranking derives the visible standings from a ranked collection:
// case-insensitive filtering, single-key sorting and the sort toggle rule.
// Every function here is pure; callers recompute the view from current
// inputs instead of patching a previous result.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dcimring/pickleball-ratings/internal/models"
)

// SortKey names a sortable column
type SortKey string

const (
	SortByRank         SortKey = "rank_position"
	SortByPlayerName   SortKey = "player_name"
	SortByRoundsPlayed SortKey = "rounds_played"
	SortByRating       SortKey = "rating"
)

// Direction is the sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// SortSpec selects the column and direction of the standings
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort is rank ascending, best player first
func DefaultSort() SortSpec {
	return SortSpec{Key: SortByRank, Direction: Asc}
}

// Toggle applies a sort-header activation: the same key flips the
// direction, a different key starts ascending.
func (s SortSpec) Toggle(key SortKey) SortSpec {
	if s.Key == key {
		if s.Direction == Asc {
			return SortSpec{Key: key, Direction: Desc}
		}
		return SortSpec{Key: key, Direction: Asc}
	}
	return SortSpec{Key: key, Direction: Asc}
}

// ParseSortKey validates a column name
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByRank, SortByPlayerName, SortByRoundsPlayed, SortByRating:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// ParseDirection validates a direction name
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MatchesSearch reports whether name contains search, ignoring case.
// An empty search matches everything.
func MatchesSearch(name, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

// Compare orders two entries by one field using the field's natural
// ordering. Names compare case-sensitively, byte by byte.
func Compare(a, b models.RankingEntry, key SortKey) int {
	switch key {
	case SortByPlayerName:
		return strings.Compare(a.PlayerName, b.PlayerName)
	case SortByRoundsPlayed:
		return cmp.Compare(a.RoundsPlayed, b.RoundsPlayed)
	case SortByRating:
		return cmp.Compare(a.Rating, b.Rating)
	default:
		return cmp.Compare(a.RankPosition, b.RankPosition)
	}
}

// Filter returns the entries whose name matches search, in input order
func Filter(c models.Collection, search string) models.Collection {
	out := make(models.Collection, 0, len(c))
	for _, e := range c {
		if MatchesSearch(e.PlayerName, search) {
			out = append(out, e)
		}
	}
	return out
}

// Sort returns a sorted copy of c. The sort is stable, so entries with
// equal keys keep their input order.
func Sort(c models.Collection, spec SortSpec) models.Collection {
	out := slices.Clone(c)
	if out == nil {
		out = models.Collection{}
	}
	sortInPlace(out, spec)
	return out
}

func sortInPlace(c models.Collection, spec SortSpec) {
	slices.SortStableFunc(c, func(a, b models.RankingEntry) int {
		if spec.Direction == Desc {
			return Compare(b, a, spec.Key)
		}
		return Compare(a, b, spec.Key)
	})
}

// View is the displayed standings: filter by search, then sort by spec
func View(c models.Collection, search string, spec SortSpec) models.Collection {
	out := Filter(c, search)
	sortInPlace(out, spec)
	return out
}
