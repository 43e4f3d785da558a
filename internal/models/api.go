package models

// StandingsResponse represents the filtered and sorted standings of one mode
type StandingsResponse struct {
	Mode      Mode       `json:"mode"`
	Search    string     `json:"search"`
	SortKey   string     `json:"sort"`
	Direction string     `json:"dir"`
	Data      Collection `json:"data"`
	Total     int        `json:"total"`
	Loading   bool       `json:"loading"`
}

// TourneyCheckRequest carries the pasted name list, one name per line
type TourneyCheckRequest struct {
	Names string `json:"names" form:"names"`
}

// TourneyRow is a match result plus near-miss hints for unmatched names
type TourneyRow struct {
	TourneyMatchResult
	DidYouMean []string `json:"did_you_mean,omitempty"`
}

// TourneyReport represents the response of a batch check
type TourneyReport struct {
	Results []TourneyRow `json:"results"`
	Total   int          `json:"total"`
	Matched int          `json:"matched"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
