package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DetailLevel selects how much analysis the AI is asked to produce
type DetailLevel string

const (
	DetailBasic    DetailLevel = "basic"    // score, confidence, factors
	DetailAdvanced DetailLevel = "advanced" // adds probabilities, insights, risk, market analysis
)

func (d DetailLevel) Valid() bool {
	return d == DetailBasic || d == DetailAdvanced
}

// PredictionStatus tracks the lifecycle of a stored prediction
type PredictionStatus string

const (
	StatusPending   PredictionStatus = "pending"
	StatusCompleted PredictionStatus = "completed"
	StatusCancelled PredictionStatus = "cancelled"
)

// Risk levels the AI must choose from
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// MatchRequest is the user-entered match metadata. Immutable once submitted.
type MatchRequest struct {
	Sport     Sport  `json:"sport"`
	HomeTeam  string `json:"home_team" validate:"required,notblank,max=120"`
	AwayTeam  string `json:"away_team" validate:"required,notblank,max=120"`
	League    string `json:"league,omitempty" validate:"max=120"`
	Venue     string `json:"venue,omitempty" validate:"max=120"`
	MatchDate string `json:"match_date,omitempty" validate:"max=32"`
}

// Normalized returns a copy with surrounding whitespace removed from every field
func (m MatchRequest) Normalized() MatchRequest {
	m.HomeTeam = strings.TrimSpace(m.HomeTeam)
	m.AwayTeam = strings.TrimSpace(m.AwayTeam)
	m.League = strings.TrimSpace(m.League)
	m.Venue = strings.TrimSpace(m.Venue)
	m.MatchDate = strings.TrimSpace(m.MatchDate)
	return m
}

// WinProbability is a home/away/draw percentage triple summing to 100
type WinProbability struct {
	Home float64 `json:"home" validate:"gte=0,lte=100" flex:"required"`
	Away float64 `json:"away" validate:"gte=0,lte=100" flex:"required"`
	Draw float64 `json:"draw" validate:"gte=0,lte=100" flex:"required"`
}

func (w WinProbability) Sum() float64 {
	return w.Home + w.Away + w.Draw
}

type MarketAnalysis struct {
	ValueRating     float64 `json:"value_rating" validate:"gte=1,lte=10" flex:"required"`
	ExpectedOdds    string  `json:"expected_odds" validate:"required"`
	MarketSentiment string  `json:"market_sentiment" validate:"required"`
}

// PredictionOutput is the structured object returned by the AI provider.
// Advanced-only fields are nil/empty for basic requests.
type PredictionOutput struct {
	PredictedHomeScore   int             `json:"predicted_home_score" validate:"gte=0" flex:"required"`
	PredictedAwayScore   int             `json:"predicted_away_score" validate:"gte=0" flex:"required"`
	ConfidencePercentage float64         `json:"confidence_percentage" validate:"gte=0,lte=100" flex:"required"`
	Factors              []string        `json:"factors" validate:"required,min=1,dive,required"`
	WinProbability       *WinProbability `json:"win_probability,omitempty"`
	KeyInsights          []string        `json:"key_insights,omitempty" validate:"dive,required"`
	RiskAssessment       string          `json:"risk_assessment,omitempty"`
	RecommendedBet       string          `json:"recommended_bet,omitempty"`
	MarketAnalysis       *MarketAnalysis `json:"market_analysis,omitempty"`
}

// Analysis extracts the nested fields that are persisted as one JSON column
func (p *PredictionOutput) Analysis() PredictionAnalysis {
	return PredictionAnalysis{
		Factors:        p.Factors,
		WinProbability: p.WinProbability,
		KeyInsights:    p.KeyInsights,
		RiskAssessment: p.RiskAssessment,
		RecommendedBet: p.RecommendedBet,
		MarketAnalysis: p.MarketAnalysis,
	}
}

// PredictionAnalysis is the content of PredictionRecord.PredictionFactors
type PredictionAnalysis struct {
	Factors        []string        `json:"factors"`
	WinProbability *WinProbability `json:"win_probability,omitempty"`
	KeyInsights    []string        `json:"key_insights,omitempty"`
	RiskAssessment string          `json:"risk_assessment,omitempty"`
	RecommendedBet string          `json:"recommended_bet,omitempty"`
	MarketAnalysis *MarketAnalysis `json:"market_analysis,omitempty"`
}

// Encode flattens the analysis into the string stored in prediction_factors
func (a PredictionAnalysis) Encode() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode prediction factors: %w", err)
	}
	return string(b), nil
}

// DecodeAnalysis parses a prediction_factors column. Older basic records
// stored a bare JSON array of factors, which is accepted as well.
func DecodeAnalysis(raw string) (*PredictionAnalysis, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &PredictionAnalysis{}, nil
	}
	if strings.HasPrefix(raw, "[") {
		var factors []string
		if err := json.Unmarshal([]byte(raw), &factors); err != nil {
			return nil, fmt.Errorf("decode prediction factors: %w", err)
		}
		return &PredictionAnalysis{Factors: factors}, nil
	}
	var a PredictionAnalysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode prediction factors: %w", err)
	}
	return &a, nil
}

// PredictionRecord is a stored prediction. Field names are the store's column names.
type PredictionRecord struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"user_id"`
	Sport                Sport            `json:"sport"`
	HomeTeam             string           `json:"home_team"`
	AwayTeam             string           `json:"away_team"`
	PredictedHomeScore   int              `json:"predicted_home_score"`
	PredictedAwayScore   int              `json:"predicted_away_score"`
	ConfidencePercentage float64          `json:"confidence_percentage"`
	PredictionFactors    string           `json:"prediction_factors"`
	Status               PredictionStatus `json:"status"`
	CreatedAt            time.Time        `json:"created_at"`
	ActualHomeScore      *int             `json:"actual_home_score,omitempty"`
	ActualAwayScore      *int             `json:"actual_away_score,omitempty"`
	LeagueName           *string          `json:"league_name,omitempty"`
	Venue                *string          `json:"venue,omitempty"`
	MatchDate            *string          `json:"match_date,omitempty"`
}

// ExactHit reports whether a completed prediction matched the final score
func (r *PredictionRecord) ExactHit() bool {
	if r.ActualHomeScore == nil || r.ActualAwayScore == nil {
		return false
	}
	return r.PredictedHomeScore == *r.ActualHomeScore && r.PredictedAwayScore == *r.ActualAwayScore
}

// SortOrder for listing predictions by created_at
type SortOrder string

const (
	OrderDesc SortOrder = "desc"
	OrderAsc  SortOrder = "asc"
)

// ListOptions mirrors the store's list({ where, orderBy, limit }) call
type ListOptions struct {
	UserID string
	Order  SortOrder
	Limit  int
}

// DefaultListLimit is the number of predictions the history view loads
const DefaultListLimit = 50

// PredictionResult is returned to the client after a successful submission
type PredictionResult struct {
	Prediction    *PredictionRecord        `json:"prediction"`
	Analysis      *PredictionAnalysis      `json:"analysis"`
	SportsData    *ComprehensiveSportsData `json:"sports_data,omitempty"`
	AnalysisSteps []string                 `json:"analysis_steps"`
}

// HistorySummary backs the history tab
type HistorySummary struct {
	Predictions []PredictionRecord `json:"predictions"`
	Total       int                `json:"total"`
	Completed   int                `json:"completed"`
	Pending     int                `json:"pending"`
	Accuracy    int                `json:"accuracy"` // percent, rounded
	Sports      []Sport            `json:"sports"`
	Stale       bool               `json:"stale,omitempty"`
}
