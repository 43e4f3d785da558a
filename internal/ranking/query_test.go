package ranking

import (
	"testing"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id uint, name string, rank int, rating float64, rounds int) models.RankingEntry {
	return models.RankingEntry{
		ID:           id,
		PlayerName:   name,
		RankPosition: rank,
		Rating:       rating,
		RoundsPlayed: rounds,
		IsCurrent:    true,
	}
}

func names(c models.Collection) []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.PlayerName
	}
	return out
}

func sampleCollection() models.Collection {
	return models.Collection{
		entry(1, "Amy Chen", 1, 5.12, 40),
		entry(2, "bob stone", 2, 4.90, 12),
		entry(3, "Carla Diaz", 4, 4.75, 33),
		entry(4, "Dev Patel", 7, 4.20, 5),
		entry(5, "Ella Bobbins", 9, 3.85, 21),
	}
}

func TestView_ZedAmyScenario(t *testing.T) {
	c := models.Collection{
		entry(1, "Zed", 2, 4.1, 3),
		entry(2, "Amy", 1, 4.8, 9),
	}

	tests := []struct {
		name string
		spec SortSpec
		want []string
	}{
		{"rank ascending", SortSpec{Key: SortByRank, Direction: Asc}, []string{"Amy", "Zed"}},
		{"name ascending", SortSpec{Key: SortByPlayerName, Direction: Asc}, []string{"Amy", "Zed"}},
		{"rating descending", SortSpec{Key: SortByRating, Direction: Desc}, []string{"Amy", "Zed"}},
		{"rounds ascending", SortSpec{Key: SortByRoundsPlayed, Direction: Asc}, []string{"Zed", "Amy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(View(c, "", tt.spec)))
		})
	}
}

func TestView_DescendingIsReverseOfAscendingWithoutTies(t *testing.T) {
	c := sampleCollection()
	for _, key := range []SortKey{SortByRank, SortByPlayerName, SortByRoundsPlayed, SortByRating} {
		t.Run(string(key), func(t *testing.T) {
			asc := names(View(c, "", SortSpec{Key: key, Direction: Asc}))
			desc := names(View(c, "", SortSpec{Key: key, Direction: Desc}))

			reversed := make([]string, len(desc))
			for i, n := range desc {
				reversed[len(desc)-1-i] = n
			}
			assert.Equal(t, asc, reversed)
		})
	}
}

func TestView_NameSortIsCaseSensitive(t *testing.T) {
	// uppercase letters sort before lowercase in byte order
	got := View(sampleCollection(), "", SortSpec{Key: SortByPlayerName, Direction: Asc})
	assert.Equal(t, "bob stone", got[len(got)-1].PlayerName)
}

func TestView_EqualKeysKeepInputOrder(t *testing.T) {
	c := models.Collection{
		entry(1, "First", 1, 4.0, 10),
		entry(2, "Second", 2, 4.0, 10),
		entry(3, "Third", 3, 4.0, 10),
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, names(View(c, "", SortSpec{Key: SortByRating, Direction: Desc})))
	assert.Equal(t, []string{"First", "Second", "Third"}, names(View(c, "", SortSpec{Key: SortByRoundsPlayed, Direction: Asc})))
}

func TestView_Filtering(t *testing.T) {
	c := sampleCollection()

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, []string{"bob stone", "Ella Bobbins"}, names(View(c, "BOB", DefaultSort())))
	})

	t.Run("no match yields empty", func(t *testing.T) {
		got := View(c, "zzz", DefaultSort())
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty search keeps every entry", func(t *testing.T) {
		got := View(c, "", SortSpec{Key: SortByRating, Direction: Asc})
		assert.ElementsMatch(t, names(c), names(got))
	})

	t.Run("empty collection", func(t *testing.T) {
		assert.Empty(t, View(nil, "amy", DefaultSort()))
	})
}

func TestView_DoesNotReorderInput(t *testing.T) {
	c := sampleCollection()
	before := names(c)
	_ = View(c, "", SortSpec{Key: SortByPlayerName, Direction: Desc})
	_ = Sort(c, SortSpec{Key: SortByRating, Direction: Asc})
	assert.Equal(t, before, names(c))
}

func TestView_UnsortedSourceIsHandled(t *testing.T) {
	c := models.Collection{
		entry(3, "C", 30, 1, 0),
		entry(1, "A", 10, 3, 0),
		entry(2, "B", 20, 2, 0),
	}
	assert.Equal(t, []string{"A", "B", "C"}, names(View(c, "", DefaultSort())))
}

func TestSortSpec_Toggle(t *testing.T) {
	start := DefaultSort()

	once := start.Toggle(SortByRank)
	assert.Equal(t, SortSpec{Key: SortByRank, Direction: Desc}, once)
	assert.Equal(t, start, once.Toggle(SortByRank), "toggling twice returns to the original direction")

	other := once.Toggle(SortByRating)
	assert.Equal(t, SortSpec{Key: SortByRating, Direction: Asc}, other)
}

func TestParseSortKeyAndDirection(t *testing.T) {
	k, err := ParseSortKey("rounds_played")
	require.NoError(t, err)
	assert.Equal(t, SortByRoundsPlayed, k)

	_, err = ParseSortKey("valid_from")
	assert.ErrorIs(t, err, ErrUnknownSortKey)

	d, err := ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("down")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestMatchesSearch(t *testing.T) {
	assert.True(t, MatchesSearch("Amy Chen", ""))
	assert.True(t, MatchesSearch("Amy Chen", "y c"))
	assert.True(t, MatchesSearch("Amy Chen", "CHEN"))
	assert.False(t, MatchesSearch("Amy Chen", "Cheng"))
}
