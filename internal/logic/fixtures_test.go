package logic

import (
	"github.com/matchoracle/prediction-api/internal/models"
)

func sampleRequest() models.MatchRequest {
	return models.MatchRequest{
		Sport:     models.SportSoccer,
		HomeTeam:  "Manchester United",
		AwayTeam:  "Liverpool",
		League:    "Premier League",
		Venue:     "Old Trafford",
		MatchDate: "2026-10-24",
	}
}

func sampleSportsData() *models.ComprehensiveSportsData {
	p := NewSeededPlaceholderParser(11)
	req := sampleRequest()
	return &models.ComprehensiveSportsData{
		HomeTeamStats: p.TeamStats(req.HomeTeam, req.League, nil),
		AwayTeamStats: p.TeamStats(req.AwayTeam, req.League, nil),
		HeadToHead:    p.HeadToHead(req.HomeTeam, req.AwayTeam, nil),
		KeyPlayers: models.KeyPlayers{
			Home: p.Players(req.HomeTeam, nil),
			Away: p.Players(req.AwayTeam, nil),
		},
		Weather:       &models.WeatherData{Temperature: 14, Conditions: "Cloudy"},
		MarketOdds:    &models.MarketOdds{HomeWin: 2.5, Draw: 3.3, AwayWin: 2.8},
		RecentNews:    []models.NewsItem{{Title: "n1", Summary: "s1"}, {Title: "n2", Summary: "s2"}, {Title: "n3", Summary: "s3"}, {Title: "n4", Summary: "s4"}},
		VenueInfo:     p.Venue(req.Venue, nil),
		InjuryReports: p.Injuries(req.HomeTeam, req.AwayTeam, nil),
	}
}

func validAdvancedOutput() *models.PredictionOutput {
	return &models.PredictionOutput{
		PredictedHomeScore:   2,
		PredictedAwayScore:   1,
		ConfidencePercentage: 68,
		Factors:              []string{"home form", "h2h edge", "injuries", "weather", "odds drift", "venue"},
		WinProbability:       &models.WinProbability{Home: 48, Away: 27, Draw: 25},
		KeyInsights:          []string{"i1", "i2", "i3", "i4"},
		RiskAssessment:       "Medium - Liverpool away form is volatile",
		RecommendedBet:       "Home win",
		MarketAnalysis:       &models.MarketAnalysis{ValueRating: 7, ExpectedOdds: "2.40", MarketSentiment: "bullish on home"},
	}
}

func validBasicOutput() *models.PredictionOutput {
	return &models.PredictionOutput{
		PredictedHomeScore:   1,
		PredictedAwayScore:   1,
		ConfidencePercentage: 55,
		Factors:              []string{"even form"},
	}
}
