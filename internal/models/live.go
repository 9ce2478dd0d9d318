package models

import "time"

// LiveStatus of a tracked match
type LiveStatus string

const (
	LiveStatusLive     LiveStatus = "live"
	LiveStatusHalftime LiveStatus = "halftime"
	LiveStatusFinished LiveStatus = "finished"
	LiveStatusUpcoming LiveStatus = "upcoming"
)

// MatchEvent types
const (
	MatchEventGoal         = "goal"
	MatchEventCard         = "card"
	MatchEventSubstitution = "substitution"
	MatchEventPenalty      = "penalty"
)

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchEvent is a single incident during a live match
type MatchEvent struct {
	Minute      int    `json:"time"`
	Type        string `json:"type"`
	Team        string `json:"team"` // "home" or "away"
	Player      string `json:"player"`
	Description string `json:"description"`
}

// HomeAway is a per-side counter
type HomeAway struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type MatchStatistics struct {
	Possession    HomeAway `json:"possession"`
	Shots         HomeAway `json:"shots"`
	ShotsOnTarget HomeAway `json:"shots_on_target"`
	Corners       HomeAway `json:"corners"`
	Fouls         HomeAway `json:"fouls"`
}

// LiveMatchData is the live-tracker view of one pending prediction
type LiveMatchData struct {
	ID           string          `json:"id"` // prediction id
	Sport        Sport           `json:"sport"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CurrentScore Score           `json:"current_score"`
	MatchTime    string          `json:"match_time"`
	Status       LiveStatus      `json:"status"`
	Events       []MatchEvent    `json:"events"`
	Statistics   MatchStatistics `json:"statistics"`
}

// LiveSnapshot is what the tracker serves and pushes over the websocket
type LiveSnapshot struct {
	Matches     []LiveMatchData `json:"matches"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	Cached      bool            `json:"cached,omitempty"`
}
