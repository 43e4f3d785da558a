package session

import (
	"fmt"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/ranking"
)

// View is the interactive surface currently shown
type View string

const (
	ViewStandings      View = "standings"
	ViewTourneyCheck   View = "tourney_check"
	ViewSuggestionForm View = "suggestion_form"
)

// ParseView validates a view name
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewStandings, ViewTourneyCheck, ViewSuggestionForm:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// SubmissionStatus is the state of the suggestion form submission
type SubmissionStatus string

const (
	SubmissionIdle    SubmissionStatus = "idle"
	SubmissionPending SubmissionStatus = "pending"
	SubmissionSuccess SubmissionStatus = "success"
	SubmissionError   SubmissionStatus = "error"
)

// Submission is the last suggestion submission result
type Submission struct {
	Status  SubmissionStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// State is the mutable view state of one session
type State struct {
	View                View                        `json:"view"`
	Mode                models.Mode                 `json:"mode"`
	Search              string                      `json:"search"`
	Sort                ranking.SortSpec            `json:"sort"`
	PastedNames         string                      `json:"pasted_names"`
	Report              []models.TourneyMatchResult `json:"report"`
	Submission          Submission                  `json:"submission"`
	NameInput           string                      `json:"name_input"`
	ShowNameSuggestions bool                        `json:"show_name_suggestions"`
}

func initialState() State {
	return State{
		View:       ViewStandings,
		Mode:       models.ModeDoubles,
		Sort:       ranking.DefaultSort(),
		Submission: Submission{Status: SubmissionIdle},
	}
}

// Screen is the state plus everything derived from it for rendering
type Screen struct {
	State
	Loading         bool              `json:"loading"`
	Rows            models.Collection `json:"rows"`
	NameSuggestions []string          `json:"name_suggestions,omitempty"`
}
