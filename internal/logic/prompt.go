package logic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matchoracle/prediction-api/internal/models"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// BuildPrompt renders the match request and every aggregated field into
// the generation prompt. The closing instructions depend on the detail level.
func BuildPrompt(req models.MatchRequest, data *models.ComprehensiveSportsData, detail models.DetailLevel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate an advanced sports prediction analysis for this %s match:\n\n", req.Sport)

	b.WriteString("Match Details:\n")
	fmt.Fprintf(&b, "- Home Team: %s\n", req.HomeTeam)
	fmt.Fprintf(&b, "- Away Team: %s\n", req.AwayTeam)
	fmt.Fprintf(&b, "- League: %s\n", orDefault(req.League, "Not specified"))
	fmt.Fprintf(&b, "- Venue: %s\n", orDefault(req.Venue, "Not specified"))
	fmt.Fprintf(&b, "- Date: %s\n\n", orDefault(req.MatchDate, "TBD"))

	b.WriteString("Comprehensive Real-Time Data Analysis:\n\n")
	writeTeamStats(&b, "HOME TEAM STATS", data.HomeTeamStats)
	writeTeamStats(&b, "AWAY TEAM STATS", data.AwayTeamStats)

	h2h := data.HeadToHead
	b.WriteString("HEAD-TO-HEAD:\n")
	fmt.Fprintf(&b, "- Total Matches: %d\n", h2h.TotalMatches)
	fmt.Fprintf(&b, "- Home Wins: %d\n", h2h.HomeWins)
	fmt.Fprintf(&b, "- Away Wins: %d\n", h2h.AwayWins)
	fmt.Fprintf(&b, "- Draws: %d\n", h2h.Draws)
	fmt.Fprintf(&b, "- Trends: %s\n\n", strings.Join(h2h.Trends, ", "))

	b.WriteString("KEY PLAYERS:\n")
	fmt.Fprintf(&b, "- Home Key Players: %s\n", jsonString(data.KeyPlayers.Home))
	fmt.Fprintf(&b, "- Away Key Players: %s\n\n", jsonString(data.KeyPlayers.Away))

	b.WriteString("ENVIRONMENTAL FACTORS:\n")
	if data.Weather != nil {
		fmt.Fprintf(&b, "- Weather: %s°C, %s\n", formatNumber(data.Weather.Temperature), data.Weather.Conditions)
	} else {
		b.WriteString("- Weather: Not available\n")
	}
	fmt.Fprintf(&b, "- Venue: %s (Capacity: %d)\n", data.VenueInfo.Name, data.VenueInfo.Capacity)
	fmt.Fprintf(&b, "- Home Advantage Factor: %s\n\n", formatNumber(data.VenueInfo.HomeAdvantageFactor))

	b.WriteString("MARKET ANALYSIS:\n")
	if odds := data.MarketOdds; odds != nil {
		fmt.Fprintf(&b, "- Home Win Odds: %s\n", formatNumber(odds.HomeWin))
		fmt.Fprintf(&b, "- Draw Odds: %s\n", formatNumber(odds.Draw))
		fmt.Fprintf(&b, "- Away Win Odds: %s\n", formatNumber(odds.AwayWin))
	} else {
		b.WriteString("- Odds: Not available\n")
	}
	b.WriteString("\n")

	b.WriteString("INJURY REPORTS:\n")
	for _, inj := range data.InjuryReports {
		fmt.Fprintf(&b, "- %s (%s): %s\n", inj.Player, inj.Team, inj.Status)
	}
	b.WriteString("\n")

	b.WriteString("RECENT NEWS:\n")
	for i, n := range data.RecentNews {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", n.Title, n.Summary)
	}
	b.WriteString("\n")

	if detail == models.DetailBasic {
		b.WriteString(basicInstructions)
	} else {
		b.WriteString(advancedInstructions)
	}
	return b.String()
}

func writeTeamStats(b *strings.Builder, heading string, t models.TeamStats) {
	fmt.Fprintf(b, "%s:\n", heading)
	fmt.Fprintf(b, "- League Position: %d\n", t.Position)
	fmt.Fprintf(b, "- Form: %s\n", strings.Join(t.Form, "-"))
	fmt.Fprintf(b, "- Goals For/Against: %d/%d\n", t.GoalsFor, t.GoalsAgainst)
	fmt.Fprintf(b, "- Recent Results: %s\n\n", jsonString(t.RecentResults))
}

const basicInstructions = `Based on this data, provide:
1. Predicted final score for both teams
2. Confidence percentage (0-100)
3. Key factors influencing the prediction
4. Risk assessment

Consider: recent form, head-to-head records, player injuries, home advantage, current league position, and any other relevant factors.

Return as JSON with: predicted_home_score, predicted_away_score, confidence_percentage, factors (array of strings)
`

const advancedInstructions = `Based on this comprehensive data analysis, provide:
1. Predicted final score for both teams (consider all factors above)
2. Confidence percentage (0-100) based on data quality and consistency
3. Win probability breakdown (home/away/draw percentages that sum to 100)
4. 6-8 key factors influencing the prediction (be specific about data insights)
5. 4-5 key insights from the comprehensive data analysis
6. Risk assessment (low/medium/high) with reasoning
7. Recommended betting strategy based on value analysis
8. Market analysis with value rating (1-10), expected odds, and sentiment

Focus on data-driven insights, form analysis, tactical considerations, and environmental factors.
`
