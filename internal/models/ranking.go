package models

import (
	"errors"
	"fmt"
	"time"
)

// Mode is one of the two independently ranked disciplines
type Mode string

const (
	ModeSingles Mode = "singles"
	ModeDoubles Mode = "doubles"
)

// Modes lists every mode in display order
var Modes = []Mode{ModeDoubles, ModeSingles}

// ErrUnknownMode is returned when a mode name is neither singles nor doubles
var ErrUnknownMode = errors.New("unknown mode")

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingles, ModeDoubles:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// TableName returns the table holding this mode's rating rows
func (m Mode) TableName() string {
	return string(m) + "_ratings_deltas"
}

// RankingEntry is one row of one mode's leaderboard
type RankingEntry struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	PlayerName   string    `gorm:"not null;index" json:"player_name"`
	RankPosition int       `gorm:"not null;index" json:"rank_position"`
	Rating       float64   `gorm:"not null" json:"rating"`
	RoundsPlayed int       `gorm:"not null;default:0" json:"rounds_played"`
	ValidFrom    time.Time `gorm:"not null" json:"valid_from"`
	IsCurrent    bool      `gorm:"not null;index" json:"is_current"`
}

// Collection is the ordered current snapshot of one mode
type Collection []RankingEntry

// Snapshot holds the current collection of both modes. It is replaced
// wholesale on refresh and never patched.
type Snapshot struct {
	Singles  Collection `json:"singles"`
	Doubles  Collection `json:"doubles"`
	LoadedAt time.Time  `json:"loaded_at"`
	Version  int64      `json:"version"`
}

// Collection returns the entries of the given mode
func (s Snapshot) Collection(mode Mode) Collection {
	if mode == ModeSingles {
		return s.Singles
	}
	return s.Doubles
}

// Standing is a player's position in one mode
type Standing struct {
	Rank   int     `json:"rank"`
	Rating float64 `json:"rating"`
}

// TourneyMatchResult is one resolved row of a batch check.
// A nil standing means the name has no entry in that mode.
type TourneyMatchResult struct {
	Name    string    `json:"name"`
	Singles *Standing `json:"singles"`
	Doubles *Standing `json:"doubles"`
}

// Matched reports whether the name was found in at least one mode
func (r TourneyMatchResult) Matched() bool {
	return r.Singles != nil || r.Doubles != nil
}
