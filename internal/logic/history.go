package logic

import (
	"math"
	"strings"

	"github.com/matchoracle/prediction-api/internal/models"
)

// HistoryFilter narrows the history view. A nil Sport means all sports.
type HistoryFilter struct {
	Search string
	Sport  *models.Sport
}

// FilterPredictions keeps records whose home or away team contains the
// search term (case-insensitive) and whose sport matches
func FilterPredictions(records []models.PredictionRecord, filter HistoryFilter) []models.PredictionRecord {
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.PredictionRecord, 0, len(records))
	for _, r := range records {
		if filter.Sport != nil && r.Sport != *filter.Sport {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.HomeTeam), term) &&
			!strings.Contains(strings.ToLower(r.AwayTeam), term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CalculateAccuracy is the rounded percentage of completed predictions
// whose score matched exactly. Completed records missing a final score do
// not count.
func CalculateAccuracy(records []models.PredictionRecord) int {
	var completed, exact int
	for i := range records {
		r := &records[i]
		if r.Status != models.StatusCompleted || r.ActualHomeScore == nil || r.ActualAwayScore == nil {
			continue
		}
		completed++
		if r.ExactHit() {
			exact++
		}
	}
	if completed == 0 {
		return 0
	}
	return int(math.Round(100 * float64(exact) / float64(completed)))
}

// Summarize builds the history view. The filter narrows Predictions only;
// the totals, accuracy and sport list describe every record so the filter
// dropdown keeps offering sports that are currently filtered out.
func Summarize(records []models.PredictionRecord, filter HistoryFilter) *models.HistorySummary {
	summary := &models.HistorySummary{
		Predictions: FilterPredictions(records, filter),
		Total:       len(records),
		Accuracy:    CalculateAccuracy(records),
		Sports:      []models.Sport{},
	}

	seen := make(map[models.Sport]bool)
	for _, r := range records {
		switch r.Status {
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusPending:
			summary.Pending++
		}
		if !seen[r.Sport] {
			seen[r.Sport] = true
			summary.Sports = append(summary.Sports, r.Sport)
		}
	}
	return summary
}
