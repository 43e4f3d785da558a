package ranking

import (
	"testing"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDistinctNames(t *testing.T) {
	snap := models.Snapshot{
		Singles: models.Collection{entry(1, "Zoe", 1, 4, 1), entry(2, "Amy", 2, 3, 1)},
		Doubles: models.Collection{entry(3, "Amy", 1, 4, 1), entry(4, "Mark", 2, 3, 1)},
	}
	assert.Equal(t, []string{"Amy", "Mark", "Zoe"}, DistinctNames(snap))
	assert.Empty(t, DistinctNames(models.Snapshot{}))
}

func TestSuggestNames(t *testing.T) {
	pool := []string{"Anna Smith", "Hannah Lee", "Joanna", "Nanette", "Rosanna", "Savannah", "Zed"}

	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{"empty input suppressed", "", 5, nil},
		{"blank input suppressed", "   ", 5, nil},
		{"capped at limit in list order", "anna", 5, []string{"Anna Smith", "Hannah Lee", "Joanna", "Rosanna", "Savannah"}},
		{"case-insensitive", "ZE", 5, []string{"Zed"}},
		{"no match", "xyz", 5, nil},
		{"limit applies", "n", 2, []string{"Anna Smith", "Hannah Lee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestNames(pool, tt.input, tt.limit))
		})
	}
}
