package worker

import (
	"testing"
	"time"

	"github.com/matchoracle/prediction-api/internal/models"
)

func BenchmarkConvertToClickHouseEvent(b *testing.B) {
	event := &models.PredictionEvent{
		Type:         models.EventPredictionCreated,
		UserID:       "user-1",
		PredictionID: "2f1a1a4e-6a7c-4d55-9b43-8f0c2f3c1d10",
		Sport:        models.SportSoccer,
		Detail:       models.DetailAdvanced,
		HomeTeam:     "Manchester United",
		AwayTeam:     "Liverpool",
		Confidence:   68,
		ValueRating:  7.5,
		DurationMs:   4200,
	}
	rawJSON := "{}"
	ts := time.Now()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = convertToClickHouseEvent(event, rawJSON, ts)
	}
}
