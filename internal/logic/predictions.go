package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
)

var predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "match_oracle_predictions_total",
	Help: "Prediction submissions by sport, detail level and outcome",
}, []string{"sport", "detail", "outcome"})

// Progress steps reported with each prediction
var (
	advancedSteps = []string{
		"Fetching real-time team data...",
		"Analyzing recent performance...",
		"Checking injury reports...",
		"Evaluating market sentiment...",
		"Processing weather conditions...",
		"Computing AI predictions...",
		"Finalizing analysis...",
	}
	basicSteps = []string{
		"Fetching real-time team data...",
		"Computing AI predictions...",
		"Finalizing analysis...",
	}
)

// AnalysisSteps lists the pipeline stages for a detail level
func AnalysisSteps(detail models.DetailLevel) []string {
	steps := advancedSteps
	if detail == models.DetailBasic {
		steps = basicSteps
	}
	return append([]string(nil), steps...)
}

// PredictionServiceConfig wires the prediction pipeline. Events and
// Notifier are optional.
type PredictionServiceConfig struct {
	SportsData    SportsDataService
	Generator     ObjectGenerator
	Store         PredictionStore
	Events        EventSink
	Notifier      Notifier
	Validate      *validator.Validate
	NotifyTimeout time.Duration
	Logger        *zap.Logger
}

type predictionService struct {
	sportsData    SportsDataService
	generator     ObjectGenerator
	store         PredictionStore
	events        EventSink
	notifier      Notifier
	validate      *validator.Validate
	notifyTimeout time.Duration
	logger        *zap.SugaredLogger
	now           func() time.Time
}

func NewPredictionService(cfg PredictionServiceConfig) PredictionService {
	if cfg.Validate == nil {
		cfg.Validate = validator.New()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &predictionService{
		sportsData:    cfg.SportsData,
		generator:     cfg.Generator,
		store:         cfg.Store,
		events:        cfg.Events,
		notifier:      cfg.Notifier,
		validate:      cfg.Validate,
		notifyTimeout: cfg.NotifyTimeout,
		logger:        cfg.Logger.Sugar(),
		now:           time.Now,
	}
}

// Submit aggregates sports data, requests a structured prediction, validates
// it and stores the record. Each stage fails with its own sentinel error.
func (s *predictionService) Submit(ctx context.Context, userID string, req models.CreatePredictionRequest) (*models.PredictionResult, error) {
	start := s.now()
	match := req.MatchRequest.Normalized()
	if match.HomeTeam == "" || match.AwayTeam == "" {
		return nil, ErrInvalidMatch
	}
	detail := req.Detail
	if detail == "" {
		detail = models.DetailAdvanced
	}
	if !detail.Valid() {
		return nil, fmt.Errorf("unknown detail level %q", detail)
	}

	event := &models.PredictionEvent{
		UserID:   userID,
		Sport:    match.Sport,
		Detail:   detail,
		HomeTeam: match.HomeTeam,
		AwayTeam: match.AwayTeam,
	}
	fail := func(t models.PredictionEventType, outcome string, err error) {
		predictionsTotal.WithLabelValues(match.Sport.String(), string(detail), outcome).Inc()
		event.Type = t
		event.Error = err.Error()
		event.DurationMs = s.now().Sub(start).Milliseconds()
		s.emit(event)
	}

	data, err := s.sportsData.GetComprehensiveSportsData(ctx, match)
	if err != nil {
		fail(models.EventSportsDataFailed, "sports_data_failed", err)
		if !errors.Is(err, ErrSportsDataUnavailable) {
			err = fmt.Errorf("%w: %w", ErrSportsDataUnavailable, err)
		}
		return nil, err
	}

	output, err := s.generate(ctx, match, data, detail)
	if err != nil {
		s.logger.Warnw("Prediction generation failed",
			"user", userID,
			"home_team", match.HomeTeam,
			"away_team", match.AwayTeam,
			"error", err,
		)
		fail(models.EventPredictionFailed, "generation_failed", err)
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	analysis := output.Analysis()
	factors, err := analysis.Encode()
	if err != nil {
		fail(models.EventPredictionFailed, "generation_failed", err)
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	record := &models.PredictionRecord{
		UserID:               userID,
		Sport:                match.Sport,
		HomeTeam:             match.HomeTeam,
		AwayTeam:             match.AwayTeam,
		PredictedHomeScore:   output.PredictedHomeScore,
		PredictedAwayScore:   output.PredictedAwayScore,
		ConfidencePercentage: output.ConfidencePercentage,
		PredictionFactors:    factors,
		Status:               models.StatusPending,
		LeagueName:           optional(match.League),
		Venue:                optional(match.Venue),
		MatchDate:            optional(match.MatchDate),
	}

	stored, err := s.store.Create(ctx, record)
	if err != nil {
		s.logger.Errorw("Failed to save prediction", "user", userID, "error", err)
		fail(models.EventPersistenceFailed, "persistence_failed", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	predictionsTotal.WithLabelValues(match.Sport.String(), string(detail), "created").Inc()
	event.Type = models.EventPredictionCreated
	event.PredictionID = stored.ID
	event.Confidence = stored.ConfidencePercentage
	if analysis.MarketAnalysis != nil {
		event.ValueRating = analysis.MarketAnalysis.ValueRating
	}
	event.DurationMs = s.now().Sub(start).Milliseconds()
	s.emit(event)

	s.notify(ctx, stored, &analysis)

	return &models.PredictionResult{
		Prediction:    stored,
		Analysis:      &analysis,
		SportsData:    data,
		AnalysisSteps: AnalysisSteps(detail),
	}, nil
}

func (s *predictionService) generate(ctx context.Context, match models.MatchRequest, data *models.ComprehensiveSportsData, detail models.DetailLevel) (*models.PredictionOutput, error) {
	raw, err := s.generator.GenerateObject(ctx, BuildPrompt(match, data, detail), PredictionSchema(detail))
	if err != nil {
		return nil, err
	}

	var out models.PredictionOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}
	if err := ValidateOutput(s.validate, &out, detail); err != nil {
		return nil, err
	}
	return &out, nil
}

// notify runs detached from the request so a slow chat API never delays
// the response
func (s *predictionService) notify(ctx context.Context, record *models.PredictionRecord, analysis *models.PredictionAnalysis) {
	if s.notifier == nil || analysis.MarketAnalysis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.NotifyPrediction(ctx, record, analysis); err != nil {
			s.logger.Warnw("Value alert failed", "prediction", record.ID, "error", err)
		}
	}()
}

func (s *predictionService) emit(event *models.PredictionEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = s.now().UTC()
	if !s.events.Enqueue(event) {
		s.logger.Warnw("Event queue full, dropping event", "type", event.Type, "user", event.UserID)
	}
}

// Get loads one of the user's stored predictions with its decoded analysis
func (s *predictionService) Get(ctx context.Context, userID, id string) (*models.PredictionResult, error) {
	record, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	analysis, err := models.DecodeAnalysis(record.PredictionFactors)
	if err != nil {
		s.logger.Warnw("Stored prediction factors unreadable", "prediction", id, "error", err)
		analysis = &models.PredictionAnalysis{}
	}
	return &models.PredictionResult{
		Prediction:    record,
		Analysis:      analysis,
		AnalysisSteps: []string{},
	}, nil
}

// History loads the user's recent predictions and summarizes the filtered
// view. A failing store degrades to an empty, stale summary.
func (s *predictionService) History(ctx context.Context, userID string, filter HistoryFilter) (*models.HistorySummary, error) {
	records, err := s.store.List(ctx, models.ListOptions{
		UserID: userID,
		Order:  models.OrderDesc,
		Limit:  models.DefaultListLimit,
	})
	if err != nil {
		s.logger.Errorw("Failed to load predictions", "user", userID, "error", err)
		summary := Summarize(nil, filter)
		summary.Stale = true
		return summary, nil
	}
	return Summarize(records, filter), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
