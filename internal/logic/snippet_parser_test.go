package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

func organic(snippets ...string) *search.Result {
	res := &search.Result{}
	for i, s := range snippets {
		res.OrganicResults = append(res.OrganicResults, search.OrganicResult{Position: i + 1, Snippet: s})
	}
	return res
}

func newTestSnippetParser() *SnippetParser {
	return NewSnippetParser(NewSeededPlaceholderParser(3))
}

func TestSnippetTeamStats(t *testing.T) {
	p := newTestSnippetParser()
	s := p.TeamStats("Arsenal", "Premier League", organic(
		"Arsenal sit <b>2nd place</b> in the table with 15 wins, 4 draws and 3 losses, 49 points.",
	))

	assert.Equal(t, 2, s.Position)
	assert.Equal(t, 15, s.Wins)
	assert.Equal(t, 4, s.Draws)
	assert.Equal(t, 3, s.Losses)
	assert.Equal(t, 22, s.MatchesPlayed)
	assert.Equal(t, 49, s.Points)
}

func TestSnippetTeamStatsPartialFallsBack(t *testing.T) {
	p := newTestSnippetParser()
	s := p.TeamStats("Arsenal", "Premier League", organic("Arsenal have 15 wins this season"))

	// only wins found: the consistent placeholder record is kept
	assert.Equal(t, s.MatchesPlayed, s.Wins+s.Draws+s.Losses)
}

func TestSnippetWeather(t *testing.T) {
	p := newTestSnippetParser()
	w := p.Weather(organic("Manchester: 12°C, light rain showers. Humidity: 81%. Wind: 19 km/h"))
	require.NotNil(t, w)

	assert.Equal(t, 12.0, w.Temperature)
	assert.Equal(t, 81.0, w.Humidity)
	assert.Equal(t, 19.0, w.WindSpeed)
	assert.Equal(t, "Rain", w.Conditions)
}

func TestSnippetVenueCapacity(t *testing.T) {
	p := newTestSnippetParser()
	v := p.Venue("Old Trafford", organic("Old Trafford has a capacity of 74,310 and is located in Stretford."))
	assert.Equal(t, 74310, v.Capacity)
	assert.Equal(t, "Old Trafford", v.Name)
}

func TestSnippetMarketOdds(t *testing.T) {
	p := newTestSnippetParser()
	odds := p.MarketOdds(organic("Best prices: Home win 2.10, Draw 3.40, Away win 3.75"))
	require.NotNil(t, odds)
	assert.Equal(t, 2.10, odds.HomeWin)
	assert.Equal(t, 3.40, odds.Draw)
	assert.Equal(t, 3.75, odds.AwayWin)
}

func TestSnippetNewsMarkdown(t *testing.T) {
	p := newTestSnippetParser()
	items := p.News(&search.Result{NewsResults: []search.NewsResult{
		{Title: "<b>Salah</b> returns", Snippet: "<b>Salah</b> is back in training", Source: "BBC"},
	}})

	require.Len(t, items, 1)
	assert.Equal(t, "Salah returns", items[0].Title)
	assert.Equal(t, "**Salah** is back in training", items[0].Summary)
}

func TestSnippetLiveMatch(t *testing.T) {
	p := newTestSnippetParser()
	rec := models.PredictionRecord{ID: "p9", HomeTeam: "Rangers", AwayTeam: "Bruins"}

	m := p.LiveMatch(rec, &search.Result{NewsResults: []search.NewsResult{
		{Title: "Rangers 3-2 Bruins", Snippet: "Live: 54' power play goal"},
	}})
	assert.Equal(t, models.LiveStatusLive, m.Status)
	assert.Equal(t, models.Score{Home: 3, Away: 2}, m.CurrentScore)
	assert.Equal(t, "54'", m.MatchTime)
	assert.Equal(t, "p9", m.ID)
}

func TestSnippetLiveMatchStatus(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    models.LiveStatus
	}{
		{"live", "Live: 54' corner", models.LiveStatusLive},
		{"ft marker", "FT 90' Rangers hold on", models.LiveStatusFinished},
		{"full-time", "Full-time after 90' of drama", models.LiveStatusFinished},
		{"half-time", "Half-time 45' level on shots", models.LiveStatusHalftime},
		{"ft inside a word", "LEFT winger scores, 54' DRAFT pick assists", models.LiveStatusLive},
		{"ht inside a word", "WHAT a strike at 54'", models.LiveStatusLive},
	}

	p := newTestSnippetParser()
	rec := models.PredictionRecord{ID: "p9", HomeTeam: "Rangers", AwayTeam: "Bruins"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := p.LiveMatch(rec, &search.Result{NewsResults: []search.NewsResult{
				{Title: "Rangers 3-2 Bruins", Snippet: tt.snippet},
			}})
			assert.Equal(t, tt.want, m.Status)
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := map[string]string{
		"no markup":           "no markup",
		"<b>bold</b> text":    "bold text",
		"Brighton &amp; Hove": "Brighton & Hove",
		"<em>a</em> <i>b</i>": "a b",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, plainText(in), in)
	}
}
