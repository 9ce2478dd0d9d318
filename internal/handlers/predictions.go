package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matchoracle/prediction-api/internal/logic"
	"github.com/matchoracle/prediction-api/internal/models"
)

// predictionErrorStatus maps pipeline failures to a status and the short
// message shown to the user
func predictionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, logic.ErrSportsDataUnavailable):
		return http.StatusBadGateway, logic.ErrSportsDataUnavailable.Error()
	case errors.Is(err, logic.ErrPredictionFailed):
		return http.StatusBadGateway, logic.ErrPredictionFailed.Error()
	case errors.Is(err, logic.ErrPersistenceFailed):
		return http.StatusBadGateway, logic.ErrPersistenceFailed.Error()
	case errors.Is(err, logic.ErrInvalidMatch):
		return http.StatusBadRequest, logic.ErrInvalidMatch.Error()
	case errors.Is(err, logic.ErrPredictionNotFound):
		return http.StatusNotFound, logic.ErrPredictionNotFound.Error()
	default:
		return http.StatusBadRequest, err.Error()
	}
}

// CreatePrediction runs the full prediction pipeline for a match
// @Summary Create Prediction
// @Description Aggregates real-time sports data, generates a structured prediction and stores it
// @Tags Predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePredictionRequest true "Match details"
// @Success 201 {object} models.PredictionResult
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /predictions [post]
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePredictionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Detail != "" && !req.Detail.Valid() {
		h.errorResponse(w, http.StatusBadRequest, "detail must be basic or advanced")
		return
	}

	user := currentUser(r)
	result, err := h.predictions.Submit(r.Context(), user.ID, req)
	if err != nil {
		status, msg := predictionErrorStatus(err)
		h.logger.Errorw("Prediction failed", "error", err, "user", user.ID, "sport", req.Sport)
		h.errorResponse(w, status, msg)
		return
	}

	h.jsonResponse(w, http.StatusCreated, result)
}

// GetPrediction returns one stored prediction with its analysis
// @Summary Get Prediction
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Prediction ID"
// @Success 200 {object} models.PredictionResult
// @Failure 404 {object} map[string]string "Not Found"
// @Router /predictions/{id} [get]
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorResponse(w, http.StatusBadRequest, "Prediction ID is required")
		return
	}

	result, err := h.predictions.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		if errors.Is(err, logic.ErrPredictionNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Prediction not found")
			return
		}
		h.logger.Errorw("Failed to get prediction", "error", err, "id", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get prediction")
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// GetPredictionHistory lists the user's recent predictions with totals and accuracy
// @Summary Prediction History
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param search query string false "Team name substring"
// @Param sport query string false "Sport id"
// @Success 200 {object} models.HistorySummary
// @Router /predictions/history [get]
func (h *Handler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	filter := logic.HistoryFilter{Search: r.URL.Query().Get("search")}
	if s := r.URL.Query().Get("sport"); s != "" && s != "all" {
		sport, err := models.ParseSport(s)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Sport = &sport
	}

	summary, err := h.predictions.History(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		h.logger.Errorw("Failed to load history", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load predictions")
		return
	}

	h.jsonResponse(w, http.StatusOK, summary)
}

// GetSportsData returns the aggregated real-time data for a match
// @Summary Comprehensive Sports Data
// @Tags Predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.MatchRequest true "Match details"
// @Success 200 {object} models.ComprehensiveSportsData
// @Failure 502 {object} map[string]string
// @Router /sports-data [post]
func (h *Handler) GetSportsData(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	data, err := h.sportsData.GetComprehensiveSportsData(r.Context(), req.Normalized())
	if errors.Is(err, logic.ErrInvalidMatch) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorw("Sports data aggregation failed", "error", err, "home", req.HomeTeam, "away", req.AwayTeam)
		h.errorResponse(w, http.StatusBadGateway, logic.ErrSportsDataUnavailable.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, data)
}

// ListSports returns the sport catalog with form placeholders
// @Summary List Sports
// @Tags Predictions
// @Produce json
// @Success 200 {array} models.SportInfo
// @Router /sports [get]
func (h *Handler) ListSports(w http.ResponseWriter, r *http.Request) {
	sports := models.AllSports()
	out := make([]models.SportInfo, 0, len(sports))
	for _, s := range sports {
		out = append(out, s.Info())
	}
	h.jsonResponse(w, http.StatusOK, out)
}
