package logic

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

func TestPlaceholderHeadToHeadConsistent(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		p := NewSeededPlaceholderParser(seed)
		h := p.HeadToHead("Manchester United", "Liverpool", &search.Result{})

		require.True(t, h.Consistent(), "seed %d: %d+%d+%d != %d", seed, h.HomeWins, h.AwayWins, h.Draws, h.TotalMatches)
		assert.GreaterOrEqual(t, h.TotalMatches, 10)
		assert.Less(t, h.TotalMatches, 30)
		assert.Len(t, h.Trends, 3)
		assert.GreaterOrEqual(t, h.AverageGoals, 1.5)
	}
}

func TestPlaceholderTeamStatsConsistent(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		p := NewSeededPlaceholderParser(seed)
		s := p.TeamStats("Boston Bruins", "NHL", nil)

		assert.Equal(t, s.MatchesPlayed, s.Wins+s.Draws+s.Losses)
		assert.Equal(t, s.GoalsFor-s.GoalsAgainst, s.GoalDifference)
		assert.Equal(t, 3*s.Wins+s.Draws, s.Points)
		assert.Len(t, s.Form, 5)
		assert.True(t, s.Position >= 1 && s.Position <= 20)
		assert.Equal(t, "NHL", s.League)
	}
}

func TestPlaceholderTeamStatsUnknownLeague(t *testing.T) {
	s := NewSeededPlaceholderParser(1).TeamStats("Ma Long", "", nil)
	assert.Equal(t, "Unknown League", s.League)
	assert.Equal(t, "Ma Long", s.Name)
}

func TestPlaceholderRanges(t *testing.T) {
	p := NewSeededPlaceholderParser(42)
	for i := 0; i < 100; i++ {
		odds := p.MarketOdds(nil)
		assert.True(t, odds.HomeWin >= 1.5 && odds.HomeWin <= 4.5, "home %v", odds.HomeWin)
		assert.True(t, odds.Draw >= 3 && odds.Draw <= 5, "draw %v", odds.Draw)
		assert.True(t, odds.AwayWin >= 2 && odds.AwayWin <= 6, "away %v", odds.AwayWin)

		w := p.Weather(nil)
		assert.True(t, w.Temperature >= 10 && w.Temperature < 35)
		assert.True(t, w.Humidity >= 40 && w.Humidity < 80)

		v := p.Venue("Anfield", nil)
		assert.Equal(t, "Anfield", v.Name)
		assert.True(t, v.Capacity >= 30000 && v.Capacity < 80000)
		assert.True(t, v.HomeAdvantageFactor >= 0.1 && v.HomeAdvantageFactor <= 0.4)
	}
}

func TestPlaceholderNewsDefaults(t *testing.T) {
	p := NewSeededPlaceholderParser(7)
	items := p.News(&search.Result{NewsResults: []search.NewsResult{
		{Title: "Salah fit for derby", Snippet: "Boost for Liverpool", Source: "BBC", Date: "2 hours ago"},
		{},
	}})

	require.Len(t, items, 2)
	assert.Equal(t, "Salah fit for derby", items[0].Title)
	assert.Equal(t, "BBC", items[0].Source)
	assert.Equal(t, "News Update 2", items[1].Title)
	assert.Equal(t, "Latest team news and updates", items[1].Summary)
	assert.Equal(t, "Sports News", items[1].Source)
	assert.NotEmpty(t, items[1].Published)
	for _, it := range items {
		assert.True(t, it.RelevanceScore >= 0.5 && it.RelevanceScore <= 1)
	}

	assert.Empty(t, p.News(nil))
}

func TestPlaceholderLiveMatch(t *testing.T) {
	rec := models.PredictionRecord{ID: "p1", Sport: models.SportSoccer, HomeTeam: "A", AwayTeam: "B", PredictedHomeScore: 2, PredictedAwayScore: 0}

	var live, upcoming int
	for seed := uint64(0); seed < 100; seed++ {
		m := NewSeededPlaceholderParser(seed).LiveMatch(rec, nil)
		assert.Equal(t, "p1", m.ID)
		assert.Equal(t, 100, m.Statistics.Possession.Home+m.Statistics.Possession.Away)

		switch m.Status {
		case models.LiveStatusLive:
			live++
			assert.NotEmpty(t, m.Events)
			assert.True(t, sort.SliceIsSorted(m.Events, func(i, j int) bool { return m.Events[i].Minute < m.Events[j].Minute }))
		case models.LiveStatusUpcoming:
			upcoming++
			assert.Equal(t, "0'", m.MatchTime)
			assert.Equal(t, models.Score{Home: 2, Away: 0}, m.CurrentScore)
			assert.Empty(t, m.Events)
		default:
			t.Fatalf("unexpected status %q", m.Status)
		}
	}
	assert.NotZero(t, live)
	assert.NotZero(t, upcoming)
}

func TestSeededParserDeterministic(t *testing.T) {
	a := NewSeededPlaceholderParser(99).TeamStats("X", "L", nil)
	b := NewSeededPlaceholderParser(99).TeamStats("X", "L", nil)
	a.RecentResults, b.RecentResults = nil, nil
	assert.Equal(t, a, b)
}
