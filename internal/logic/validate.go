package logic

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matchoracle/prediction-api/internal/models"
)

// ValidateOutput enforces the schema bounds on a decoded generation result.
// Tag-level bounds are checked by the validator; the cross-field and
// detail-dependent rules are checked here.
func ValidateOutput(v *validator.Validate, out *models.PredictionOutput, detail models.DetailLevel) error {
	if err := v.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	if wp := out.WinProbability; wp != nil {
		if sum := wp.Sum(); math.Abs(sum-100) > probabilitySumTolerance {
			return fmt.Errorf("%w: win probabilities sum to %s", ErrInvalidPrediction, formatNumber(sum))
		}
	}

	if detail != models.DetailAdvanced {
		return nil
	}

	switch {
	case len(out.Factors) < minAdvancedFactors || len(out.Factors) > maxAdvancedFactors:
		return fmt.Errorf("%w: %d factors, want %d-%d", ErrInvalidPrediction, len(out.Factors), minAdvancedFactors, maxAdvancedFactors)
	case len(out.KeyInsights) < minAdvancedInsights || len(out.KeyInsights) > maxAdvancedInsights:
		return fmt.Errorf("%w: %d key insights, want %d-%d", ErrInvalidPrediction, len(out.KeyInsights), minAdvancedInsights, maxAdvancedInsights)
	case out.WinProbability == nil:
		return fmt.Errorf("%w: missing win probability", ErrInvalidPrediction)
	case out.MarketAnalysis == nil:
		return fmt.Errorf("%w: missing market analysis", ErrInvalidPrediction)
	}

	if RiskLevel(out.RiskAssessment) == "" {
		return fmt.Errorf("%w: risk assessment %q", ErrInvalidPrediction, out.RiskAssessment)
	}
	if out.RecommendedBet == "" {
		return fmt.Errorf("%w: missing recommended bet", ErrInvalidPrediction)
	}
	return nil
}

// RiskLevel returns the level a risk assessment opens with, such as
// "Medium - away side in poor form", or "" if it names none
func RiskLevel(assessment string) string {
	lower := strings.ToLower(strings.TrimSpace(assessment))
	for _, level := range []string{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		if strings.HasPrefix(lower, level) {
			return level
		}
	}
	return ""
}
