package models

// MatchResult is one finished fixture in a team's recent history
type MatchResult struct {
	Date        string `json:"date"`
	Opponent    string `json:"opponent"`
	Score       string `json:"score"`
	Venue       string `json:"venue"` // "home" or "away"
	Competition string `json:"competition"`
}

// TeamStats is the current-season summary for one side of a match
type TeamStats struct {
	Name           string        `json:"name"`
	League         string        `json:"league"`
	Position       int           `json:"position"`
	MatchesPlayed  int           `json:"matches_played"`
	Wins           int           `json:"wins"`
	Draws          int           `json:"draws"`
	Losses         int           `json:"losses"`
	GoalsFor       int           `json:"goals_for"`
	GoalsAgainst   int           `json:"goals_against"`
	GoalDifference int           `json:"goal_difference"`
	Points         int           `json:"points"`
	Form           []string      `json:"form"` // most recent first, W/D/L
	RecentResults  []MatchResult `json:"recent_results"`
}

// HeadToHeadData aggregates previous meetings between the two sides.
// HomeWins+AwayWins+Draws always equals TotalMatches.
type HeadToHeadData struct {
	TotalMatches   int           `json:"total_matches"`
	HomeWins       int           `json:"home_wins"`
	AwayWins       int           `json:"away_wins"`
	Draws          int           `json:"draws"`
	RecentMeetings []MatchResult `json:"recent_meetings"`
	AverageGoals   float64       `json:"average_goals"`
	Trends         []string      `json:"trends"`
}

// Consistent reports whether the outcome counts add up to the total
func (h HeadToHeadData) Consistent() bool {
	return h.HomeWins+h.AwayWins+h.Draws == h.TotalMatches
}

// Injury status values
const (
	InjuryStatusFit      = "fit"
	InjuryStatusInjured  = "injured"
	InjuryStatusDoubtful = "doubtful"
)

type PlayerStats struct {
	Name         string `json:"name"`
	Position     string `json:"position"`
	Goals        int    `json:"goals"`
	Assists      int    `json:"assists"`
	Appearances  int    `json:"appearances"`
	InjuryStatus string `json:"injury_status"`
}

type KeyPlayers struct {
	Home []PlayerStats `json:"home"`
	Away []PlayerStats `json:"away"`
}

type WeatherData struct {
	Temperature float64 `json:"temperature"` // celsius
	Conditions  string  `json:"conditions"`
	WindSpeed   float64 `json:"wind_speed"`
	Humidity    float64 `json:"humidity"`
	Forecast    string  `json:"forecast"`
}

// MarketOdds are decimal bookmaker odds
type MarketOdds struct {
	HomeWin        float64 `json:"home_win"`
	Draw           float64 `json:"draw"`
	AwayWin        float64 `json:"away_win"`
	Over25         float64 `json:"over_2_5"`
	Under25        float64 `json:"under_2_5"`
	BothTeamsScore float64 `json:"both_teams_score"`
}

type InjuryReport struct {
	Player         string `json:"player"`
	Team           string `json:"team"` // "home" or "away"
	Injury         string `json:"injury"`
	Status         string `json:"status"`
	ExpectedReturn string `json:"expected_return"`
}

type NewsItem struct {
	Title          string  `json:"title"`
	Summary        string  `json:"summary"`
	Source         string  `json:"source"`
	Published      string  `json:"published"`
	RelevanceScore float64 `json:"relevance_score"`
}

type VenueInfo struct {
	Name                string  `json:"name"`
	Capacity            int     `json:"capacity"`
	Surface             string  `json:"surface"`
	Location            string  `json:"location"`
	Altitude            int     `json:"altitude"`
	HomeAdvantageFactor float64 `json:"home_advantage_factor"`
}

// DefaultVenueInfo is used whenever the match request names no venue
func DefaultVenueInfo() VenueInfo {
	return VenueInfo{
		Name:                "Unknown Venue",
		Capacity:            50000,
		Surface:             "Grass",
		Location:            "Unknown",
		Altitude:            0,
		HomeAdvantageFactor: 0.1,
	}
}

// ComprehensiveSportsData is the aggregated bundle handed to the prediction
// request builder. Weather and MarketOdds are nil when unavailable.
type ComprehensiveSportsData struct {
	HomeTeamStats TeamStats      `json:"home_team_stats"`
	AwayTeamStats TeamStats      `json:"away_team_stats"`
	HeadToHead    HeadToHeadData `json:"head_to_head"`
	KeyPlayers    KeyPlayers     `json:"key_players"`
	Weather       *WeatherData   `json:"weather"`
	MarketOdds    *MarketOdds    `json:"market_odds"`
	InjuryReports []InjuryReport `json:"injury_reports"`
	RecentNews    []NewsItem     `json:"recent_news"`
	VenueInfo     VenueInfo      `json:"venue_info"`
}
