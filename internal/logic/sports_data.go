package logic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

type sportsDataService struct {
	search Searcher
	parser ResultParser
	logger *zap.SugaredLogger
}

func NewSportsDataService(searcher Searcher, parser ResultParser, logger *zap.Logger) SportsDataService {
	return &sportsDataService{
		search: searcher,
		parser: parser,
		logger: logger.Sugar(),
	}
}

// Query builders. The wording is what the search provider is tuned for.

func teamStatsQuery(team string, sport models.Sport, league string) string {
	return collapseSpaces(fmt.Sprintf("%s %s statistics current season %s wins losses goals", team, sport, league))
}

func headToHeadQuery(home, away string, sport models.Sport) string {
	return fmt.Sprintf("%s vs %s head to head history %s recent matches results", home, away, sport)
}

func playersQuery(team string, sport models.Sport) string {
	return fmt.Sprintf("%s %s key players top scorers current season", team, sport)
}

func weatherQuery(venue, date string) string {
	if date == "" {
		date = "today"
	}
	return fmt.Sprintf("%s weather forecast %s temperature conditions", venue, date)
}

func oddsQuery(home, away string, sport models.Sport) string {
	return fmt.Sprintf("%s vs %s %s betting odds home win draw away win", home, away, sport)
}

func newsQuery(home, away string, sport models.Sport) string {
	return fmt.Sprintf("%s vs %s %s latest news team updates", home, away, sport)
}

func venueQuery(venue string) string {
	return fmt.Sprintf("%s stadium capacity information location details", venue)
}

func injuriesQuery(home, away string) string {
	return fmt.Sprintf("%s %s injury report player fitness updates", home, away)
}

func liveScoreQuery(home, away string, sport models.Sport) string {
	return fmt.Sprintf("%s vs %s live score %s today", home, away, sport)
}

// collapseSpaces removes the double space left by an empty league
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GetComprehensiveSportsData issues every search concurrently and maps the
// results. Any failed search fails the whole aggregation.
func (s *sportsDataService) GetComprehensiveSportsData(ctx context.Context, req models.MatchRequest) (*models.ComprehensiveSportsData, error) {
	req = req.Normalized()
	if req.HomeTeam == "" || req.AwayTeam == "" {
		return nil, ErrInvalidMatch
	}
	data := &models.ComprehensiveSportsData{
		VenueInfo: models.DefaultVenueInfo(),
	}

	g, ctx := errgroup.WithContext(ctx)

	fetch := func(name, query string, opts search.Options, apply func(*search.Result)) {
		g.Go(func() error {
			res, err := s.search.Search(ctx, query, opts)
			if err != nil {
				return fmt.Errorf("%s search: %w", name, err)
			}
			apply(res)
			return nil
		})
	}

	fetch("home team", teamStatsQuery(req.HomeTeam, req.Sport, req.League), search.Options{Limit: 5}, func(r *search.Result) {
		data.HomeTeamStats = s.parser.TeamStats(req.HomeTeam, req.League, r)
	})
	fetch("away team", teamStatsQuery(req.AwayTeam, req.Sport, req.League), search.Options{Limit: 5}, func(r *search.Result) {
		data.AwayTeamStats = s.parser.TeamStats(req.AwayTeam, req.League, r)
	})
	fetch("head to head", headToHeadQuery(req.HomeTeam, req.AwayTeam, req.Sport), search.Options{Limit: 8}, func(r *search.Result) {
		data.HeadToHead = s.parser.HeadToHead(req.HomeTeam, req.AwayTeam, r)
	})
	fetch("home players", playersQuery(req.HomeTeam, req.Sport), search.Options{Limit: 3}, func(r *search.Result) {
		data.KeyPlayers.Home = s.parser.Players(req.HomeTeam, r)
	})
	fetch("away players", playersQuery(req.AwayTeam, req.Sport), search.Options{Limit: 3}, func(r *search.Result) {
		data.KeyPlayers.Away = s.parser.Players(req.AwayTeam, r)
	})
	fetch("odds", oddsQuery(req.HomeTeam, req.AwayTeam, req.Sport), search.Options{Limit: 5}, func(r *search.Result) {
		data.MarketOdds = s.parser.MarketOdds(r)
	})
	fetch("news", newsQuery(req.HomeTeam, req.AwayTeam, req.Sport), search.Options{Type: search.TypeNews, Limit: 10}, func(r *search.Result) {
		data.RecentNews = s.parser.News(r)
	})
	fetch("injuries", injuriesQuery(req.HomeTeam, req.AwayTeam), search.Options{Type: search.TypeNews, Limit: 5}, func(r *search.Result) {
		data.InjuryReports = s.parser.Injuries(req.HomeTeam, req.AwayTeam, r)
	})

	if req.Venue != "" {
		fetch("weather", weatherQuery(req.Venue, req.MatchDate), search.Options{Limit: 3}, func(r *search.Result) {
			data.Weather = s.parser.Weather(r)
		})
		fetch("venue", venueQuery(req.Venue), search.Options{Limit: 3}, func(r *search.Result) {
			data.VenueInfo = s.parser.Venue(req.Venue, r)
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warnw("Sports data aggregation failed",
			"sport", req.Sport,
			"home_team", req.HomeTeam,
			"away_team", req.AwayTeam,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrSportsDataUnavailable, err)
	}

	if data.InjuryReports == nil {
		data.InjuryReports = []models.InjuryReport{}
	}
	if data.RecentNews == nil {
		data.RecentNews = []models.NewsItem{}
	}
	return data, nil
}
