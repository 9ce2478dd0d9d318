package logic

import "errors"

// User-facing failures. Handlers map these to response messages.
var (
	ErrSportsDataUnavailable = errors.New("unable to retrieve real-time sports data")
	ErrPredictionFailed      = errors.New("failed to generate prediction")
	ErrPersistenceFailed     = errors.New("failed to save prediction")
	ErrInvalidPrediction     = errors.New("prediction failed validation")
	ErrPredictionNotFound    = errors.New("prediction not found")
	ErrRefreshInProgress     = errors.New("live refresh already in progress")
	ErrInvalidMatch          = errors.New("home and away teams are required")
)
