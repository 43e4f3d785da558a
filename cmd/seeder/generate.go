package main

import (
	"cmp"
	"math"
	"slices"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dcimring/pickleball-ratings/internal/models"
)

const (
	MinRating   = 2.0
	MaxRating   = 6.5
	MaxRounds   = 60
	playRatePct = 80 // share of the roster ranked in each mode
)

// Generator produces deterministic demo players for a seed
type Generator struct {
	faker *gofakeit.Faker
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Roster returns count distinct full names
func (g *Generator) Roster(count int) []string {
	seen := make(map[string]struct{}, count)
	names := make([]string, 0, count)
	for len(names) < count {
		name := g.faker.Name()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Rankings rates a random subset of the roster and ranks it by rating, best
// first
func (g *Generator) Rankings(roster []string) models.Collection {
	entries := make(models.Collection, 0, len(roster))
	for _, name := range roster {
		if g.faker.Number(1, 100) > playRatePct {
			continue
		}
		entries = append(entries, models.RankingEntry{
			PlayerName:   name,
			Rating:       math.Round(g.faker.Float64Range(MinRating, MaxRating)*1000) / 1000,
			RoundsPlayed: g.faker.Number(1, MaxRounds),
		})
	}

	slices.SortStableFunc(entries, func(a, b models.RankingEntry) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	for i := range entries {
		entries[i].RankPosition = i + 1
	}
	return entries
}
