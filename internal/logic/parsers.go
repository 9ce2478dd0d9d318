package logic

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

// ResultParser maps raw search results onto the sports-data records. There
// is one implementation per search provider format.
type ResultParser interface {
	TeamStats(team, league string, res *search.Result) models.TeamStats
	HeadToHead(home, away string, res *search.Result) models.HeadToHeadData
	Players(team string, res *search.Result) []models.PlayerStats
	Weather(res *search.Result) *models.WeatherData
	MarketOdds(res *search.Result) *models.MarketOdds
	News(res *search.Result) []models.NewsItem
	Venue(name string, res *search.Result) models.VenueInfo
	Injuries(home, away string, res *search.Result) []models.InjuryReport
	LiveMatch(rec models.PredictionRecord, res *search.Result) models.LiveMatchData
}

// PlaceholderParser ignores result content (except news) and synthesizes
// plausible, internally consistent values
type PlaceholderParser struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewPlaceholderParser() *PlaceholderParser {
	seed := uint64(time.Now().UnixNano())
	return NewSeededPlaceholderParser(seed)
}

// NewSeededPlaceholderParser gives deterministic output for a seed
func NewSeededPlaceholderParser(seed uint64) *PlaceholderParser {
	return &PlaceholderParser{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// intn returns min + [0, n)
func (p *PlaceholderParser) intn(min, n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 {
		return min
	}
	return min + p.rng.IntN(n)
}

// float returns min + [0, span), rounded to the given decimals
func (p *PlaceholderParser) float(min, span float64, decimals int) float64 {
	p.mu.Lock()
	v := min + p.rng.Float64()*span
	p.mu.Unlock()
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func (p *PlaceholderParser) chance(prob float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < prob
}

var formCodes = [...]string{"W", "D", "L"}

func (p *PlaceholderParser) TeamStats(team, league string, _ *search.Result) models.TeamStats {
	played := p.intn(10, 30)
	wins := p.intn(0, played+1)
	draws := p.intn(0, played-wins+1)
	losses := played - wins - draws
	goalsFor := p.intn(20, 50)
	goalsAgainst := p.intn(15, 40)

	form := make([]string, 5)
	for i := range form {
		form[i] = formCodes[p.intn(0, len(formCodes))]
	}

	if league == "" {
		league = "Unknown League"
	}

	return models.TeamStats{
		Name:           team,
		League:         league,
		Position:       p.intn(1, 20),
		MatchesPlayed:  played,
		Wins:           wins,
		Draws:          draws,
		Losses:         losses,
		GoalsFor:       goalsFor,
		GoalsAgainst:   goalsAgainst,
		GoalDifference: goalsFor - goalsAgainst,
		Points:         3*wins + draws,
		Form:           form,
		RecentResults: []models.MatchResult{{
			Date:        p.now().AddDate(0, 0, -p.intn(3, 10)).Format("2006-01-02"),
			Opponent:    "Team A",
			Score:       strconv.Itoa(p.intn(0, 4)) + "-" + strconv.Itoa(p.intn(0, 4)),
			Venue:       "home",
			Competition: "League",
		}},
	}
}

func (p *PlaceholderParser) HeadToHead(home, away string, _ *search.Result) models.HeadToHeadData {
	total := p.intn(10, 20)
	homeWins := p.intn(0, total+1)
	awayWins := p.intn(0, total-homeWins+1)
	draws := total - homeWins - awayWins

	recent := min(total, 5)
	recentHomeWins := min(homeWins, p.intn(0, recent+1))

	return models.HeadToHeadData{
		TotalMatches: total,
		HomeWins:     homeWins,
		AwayWins:     awayWins,
		Draws:        draws,
		RecentMeetings: []models.MatchResult{{
			Date:        p.now().AddDate(0, -p.intn(1, 12), 0).Format("2006-01-02"),
			Opponent:    "vs " + away,
			Score:       strconv.Itoa(p.intn(0, 4)) + "-" + strconv.Itoa(p.intn(0, 4)),
			Venue:       "home",
			Competition: "League",
		}},
		AverageGoals: p.float(1.5, 2, 1),
		Trends: []string{
			home + " has won " + strconv.Itoa(recentHomeWins) + " of last " + strconv.Itoa(recent) + " meetings",
			"Both teams score in " + strconv.Itoa(p.intn(40, 41)) + "% of matches",
			"Over 2.5 goals in " + strconv.Itoa(p.intn(40, 41)) + "% of recent encounters",
		},
	}
}

func (p *PlaceholderParser) Players(team string, _ *search.Result) []models.PlayerStats {
	return []models.PlayerStats{{
		Name:         "Star Player",
		Position:     "Forward",
		Goals:        p.intn(5, 20),
		Assists:      p.intn(2, 10),
		Appearances:  p.intn(15, 25),
		InjuryStatus: models.InjuryStatusFit,
	}}
}

func (p *PlaceholderParser) Weather(_ *search.Result) *models.WeatherData {
	return &models.WeatherData{
		Temperature: float64(p.intn(10, 25)),
		Conditions:  "Clear",
		WindSpeed:   float64(p.intn(5, 20)),
		Humidity:    float64(p.intn(40, 40)),
		Forecast:    "Fair weather expected for match day",
	}
}

func (p *PlaceholderParser) MarketOdds(_ *search.Result) *models.MarketOdds {
	return &models.MarketOdds{
		HomeWin:        p.float(1.5, 3, 2),
		Draw:           p.float(3.0, 2, 2),
		AwayWin:        p.float(2.0, 4, 2),
		Over25:         p.float(1.8, 1, 2),
		Under25:        p.float(1.9, 1, 2),
		BothTeamsScore: p.float(1.7, 1, 2),
	}
}

// News is taken from the provider's news results, with defaults for
// missing fields
func (p *PlaceholderParser) News(res *search.Result) []models.NewsItem {
	if res == nil {
		return []models.NewsItem{}
	}
	items := make([]models.NewsItem, 0, len(res.NewsResults))
	for i, n := range res.NewsResults {
		item := models.NewsItem{
			Title:          n.Title,
			Summary:        n.Snippet,
			Source:         n.Source,
			Published:      n.Date,
			RelevanceScore: p.float(0.5, 0.5, 2),
		}
		if item.Title == "" {
			item.Title = "News Update " + strconv.Itoa(i+1)
		}
		if item.Summary == "" {
			item.Summary = "Latest team news and updates"
		}
		if item.Source == "" {
			item.Source = "Sports News"
		}
		if item.Published == "" {
			item.Published = p.now().UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}

func (p *PlaceholderParser) Venue(name string, _ *search.Result) models.VenueInfo {
	return models.VenueInfo{
		Name:                name,
		Capacity:            p.intn(30000, 50000),
		Surface:             "Grass",
		Location:            "City Center",
		Altitude:            p.intn(0, 1000),
		HomeAdvantageFactor: p.float(0.1, 0.3, 2),
	}
}

func (p *PlaceholderParser) Injuries(home, away string, _ *search.Result) []models.InjuryReport {
	return []models.InjuryReport{{
		Player:         "Key Player",
		Team:           "home",
		Injury:         "Minor knock",
		Status:         "Doubtful",
		ExpectedReturn: "1-2 weeks",
	}}
}

var liveEventTypes = [...]string{models.MatchEventGoal, models.MatchEventCard, models.MatchEventSubstitution}

// LiveMatch reports roughly one in three pending matches as in progress
func (p *PlaceholderParser) LiveMatch(rec models.PredictionRecord, _ *search.Result) models.LiveMatchData {
	live := p.chance(0.3)

	m := models.LiveMatchData{
		ID:           rec.ID,
		Sport:        rec.Sport,
		HomeTeam:     rec.HomeTeam,
		AwayTeam:     rec.AwayTeam,
		CurrentScore: models.Score{Home: rec.PredictedHomeScore, Away: rec.PredictedAwayScore},
		MatchTime:    "0'",
		Status:       models.LiveStatusUpcoming,
		Events:       []models.MatchEvent{},
		Statistics:   p.matchStatistics(),
	}
	if !live {
		return m
	}

	m.Status = models.LiveStatusLive
	m.CurrentScore = models.Score{Home: p.intn(0, 4), Away: p.intn(0, 4)}
	m.MatchTime = strconv.Itoa(p.intn(1, 90)) + "'"
	m.Events = p.matchEvents()
	return m
}

func (p *PlaceholderParser) matchStatistics() models.MatchStatistics {
	homePossession := p.intn(30, 41)
	return models.MatchStatistics{
		Possession:    models.HomeAway{Home: homePossession, Away: 100 - homePossession},
		Shots:         models.HomeAway{Home: p.intn(3, 15), Away: p.intn(3, 15)},
		ShotsOnTarget: models.HomeAway{Home: p.intn(1, 8), Away: p.intn(1, 8)},
		Corners:       models.HomeAway{Home: p.intn(0, 10), Away: p.intn(0, 10)},
		Fouls:         models.HomeAway{Home: p.intn(5, 15), Away: p.intn(5, 15)},
	}
}

func (p *PlaceholderParser) matchEvents() []models.MatchEvent {
	n := p.intn(1, 5)
	events := make([]models.MatchEvent, 0, n)
	for i := 0; i < n; i++ {
		team := "away"
		if p.chance(0.5) {
			team = "home"
		}
		events = append(events, models.MatchEvent{
			Minute:      p.intn(1, 90),
			Type:        liveEventTypes[p.intn(0, len(liveEventTypes))],
			Team:        team,
			Player:      "Player " + strconv.Itoa(p.intn(1, 11)),
			Description: "Match event description",
		})
	}
	sortEvents(events)
	return events
}

func sortEvents(events []models.MatchEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Minute < events[j].Minute })
}
