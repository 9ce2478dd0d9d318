package logic

import "github.com/matchoracle/prediction-api/internal/models"

// JSON schema bounds shared with local validation
const (
	minAdvancedFactors  = 6
	maxAdvancedFactors  = 8
	minAdvancedInsights = 4
	maxAdvancedInsights = 5

	// probabilitySumTolerance absorbs rounding in the home/away/draw triple
	probabilitySumTolerance = 1.0
)

func numberSchema(min, max float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min, "maximum": max}
}

func stringArraySchema(minItems, maxItems int) map[string]any {
	s := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	if minItems > 0 {
		s["minItems"] = minItems
	}
	if maxItems > 0 {
		s["maxItems"] = maxItems
	}
	return s
}

// PredictionSchema is the structured-output contract sent with the prompt
func PredictionSchema(detail models.DetailLevel) map[string]any {
	properties := map[string]any{
		"predicted_home_score":  map[string]any{"type": "number"},
		"predicted_away_score":  map[string]any{"type": "number"},
		"confidence_percentage": numberSchema(0, 100),
	}
	required := []string{"predicted_home_score", "predicted_away_score", "confidence_percentage", "factors"}

	if detail == models.DetailBasic {
		properties["factors"] = stringArraySchema(0, 0)
		return map[string]any{"type": "object", "properties": properties, "required": required}
	}

	properties["factors"] = stringArraySchema(minAdvancedFactors, maxAdvancedFactors)
	properties["win_probability"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"home": numberSchema(0, 100),
			"away": numberSchema(0, 100),
			"draw": numberSchema(0, 100),
		},
		"required": []string{"home", "away", "draw"},
	}
	properties["key_insights"] = stringArraySchema(minAdvancedInsights, maxAdvancedInsights)
	properties["risk_assessment"] = map[string]any{"type": "string"}
	properties["recommended_bet"] = map[string]any{"type": "string"}
	properties["market_analysis"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value_rating":     numberSchema(1, 10),
			"expected_odds":    map[string]any{"type": "string"},
			"market_sentiment": map[string]any{"type": "string"},
		},
		"required": []string{"value_rating", "expected_odds", "market_sentiment"},
	}
	required = append(required, "win_probability", "key_insights", "risk_assessment", "recommended_bet", "market_analysis")

	return map[string]any{"type": "object", "properties": properties, "required": required}
}
