package logic

import (
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/matchoracle/prediction-api/internal/models"
	"github.com/matchoracle/prediction-api/internal/search"
)

// SnippetParser reads what it can out of the provider's titles and snippets
// and delegates every field it cannot find to a fallback parser
type SnippetParser struct {
	fallback ResultParser
}

func NewSnippetParser(fallback ResultParser) *SnippetParser {
	return &SnippetParser{fallback: fallback}
}

var (
	rePosition    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\s+(?:place|in\s+the)`)
	reWins        = regexp.MustCompile(`(?i)\b(\d{1,3})\s+wins?\b`)
	reDraws       = regexp.MustCompile(`(?i)\b(\d{1,3})\s+draws?\b`)
	reLosses      = regexp.MustCompile(`(?i)\b(\d{1,3})\s+(?:losses|loss|defeats?)\b`)
	rePoints      = regexp.MustCompile(`(?i)\b(\d{1,3})\s+points?\b`)
	reTemperature = regexp.MustCompile(`(-?\d{1,2})\s*°\s*C`)
	reHumidity    = regexp.MustCompile(`(?i)humidity[:\s]+(\d{1,3})\s*%|(\d{1,3})\s*%\s*humidity`)
	reWind        = regexp.MustCompile(`(?i)wind[:\s]+(\d{1,3})\s*km/h`)
	reCapacity    = regexp.MustCompile(`(?i)capacity(?:\s+of)?[:\s]+(\d{1,3}(?:,\d{3})+|\d{4,6})`)
	reHomeOdds    = regexp.MustCompile(`(?i)home(?:\s+win)?[:\s@]+(\d{1,2}\.\d{1,2})`)
	reDrawOdds    = regexp.MustCompile(`(?i)draw[:\s@]+(\d{1,2}\.\d{1,2})`)
	reAwayOdds    = regexp.MustCompile(`(?i)away(?:\s+win)?[:\s@]+(\d{1,2}\.\d{1,2})`)
	reLiveScore   = regexp.MustCompile(`\b(\d{1,3})\s*[-–]\s*(\d{1,3})\b`)
	reLiveMinute  = regexp.MustCompile(`\b(\d{1,3})(?:\+\d)?'`)
	reFullTime    = regexp.MustCompile(`\bFT\b|(?i:\bfull[- ]?time\b)`)
	reHalfTime    = regexp.MustCompile(`\bHT\b|(?i:\bhalf[- ]?time\b)`)
)

var weatherConditions = []string{"Thunderstorm", "Snow", "Rain", "Showers", "Drizzle", "Fog", "Overcast", "Cloudy", "Partly cloudy", "Sunny", "Clear"}

// plainText strips any markup the provider left in a snippet
func plainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}

// corpus joins every title and snippet of a result as plain text
func corpus(res *search.Result) string {
	texts := res.Texts()
	for i, t := range texts {
		texts[i] = plainText(t)
	}
	return strings.Join(texts, "\n")
}

func firstInt(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(g, ",", ""))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func firstFloat(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// TeamStats overrides the record only when a complete win/draw/loss line is
// found, so the totals stay consistent
func (p *SnippetParser) TeamStats(team, league string, res *search.Result) models.TeamStats {
	stats := p.fallback.TeamStats(team, league, res)
	text := corpus(res)

	if pos, ok := firstInt(rePosition, text); ok && pos >= 1 {
		stats.Position = pos
	}

	wins, okW := firstInt(reWins, text)
	draws, okD := firstInt(reDraws, text)
	losses, okL := firstInt(reLosses, text)
	if okW && okD && okL {
		stats.Wins, stats.Draws, stats.Losses = wins, draws, losses
		stats.MatchesPlayed = wins + draws + losses
		stats.Points = 3*wins + draws
		if pts, ok := firstInt(rePoints, text); ok {
			stats.Points = pts
		}
	}
	return stats
}

func (p *SnippetParser) HeadToHead(home, away string, res *search.Result) models.HeadToHeadData {
	return p.fallback.HeadToHead(home, away, res)
}

func (p *SnippetParser) Players(team string, res *search.Result) []models.PlayerStats {
	return p.fallback.Players(team, res)
}

func (p *SnippetParser) Weather(res *search.Result) *models.WeatherData {
	w := p.fallback.Weather(res)
	text := corpus(res)

	if t, ok := firstInt(reTemperature, text); ok {
		w.Temperature = float64(t)
	}
	if h, ok := firstInt(reHumidity, text); ok && h <= 100 {
		w.Humidity = float64(h)
	}
	if ws, ok := firstInt(reWind, text); ok {
		w.WindSpeed = float64(ws)
	}
	lower := strings.ToLower(text)
	for _, c := range weatherConditions {
		if strings.Contains(lower, strings.ToLower(c)) {
			w.Conditions = c
			break
		}
	}
	return w
}

func (p *SnippetParser) MarketOdds(res *search.Result) *models.MarketOdds {
	odds := p.fallback.MarketOdds(res)
	text := corpus(res)

	home, okH := firstFloat(reHomeOdds, text)
	draw, okD := firstFloat(reDrawOdds, text)
	away, okA := firstFloat(reAwayOdds, text)
	if okH && okD && okA && home > 1 && draw > 1 && away > 1 {
		odds.HomeWin, odds.Draw, odds.AwayWin = home, draw, away
	}
	return odds
}

// News converts snippet markup to markdown so links and emphasis survive
func (p *SnippetParser) News(res *search.Result) []models.NewsItem {
	items := p.fallback.News(res)
	for i := range items {
		items[i].Title = plainText(items[i].Title)
		if md, err := htmltomarkdown.ConvertString(items[i].Summary); err == nil && strings.TrimSpace(md) != "" {
			items[i].Summary = strings.TrimSpace(md)
		}
	}
	return items
}

func (p *SnippetParser) Venue(name string, res *search.Result) models.VenueInfo {
	v := p.fallback.Venue(name, res)
	if c, ok := firstInt(reCapacity, corpus(res)); ok && c > 0 {
		v.Capacity = c
	}
	return v
}

func (p *SnippetParser) Injuries(home, away string, res *search.Result) []models.InjuryReport {
	return p.fallback.Injuries(home, away, res)
}

// LiveMatch trusts a snippet only when it carries both a score and a minute
func (p *SnippetParser) LiveMatch(rec models.PredictionRecord, res *search.Result) models.LiveMatchData {
	m := p.fallback.LiveMatch(rec, res)
	text := corpus(res)

	score := reLiveScore.FindStringSubmatch(text)
	minute, okMin := firstInt(reLiveMinute, text)
	if score == nil || !okMin {
		return m
	}
	home, _ := strconv.Atoi(score[1])
	away, _ := strconv.Atoi(score[2])

	m.Status = models.LiveStatusLive
	m.CurrentScore = models.Score{Home: home, Away: away}
	m.MatchTime = strconv.Itoa(minute) + "'"
	if reHalfTime.MatchString(text) {
		m.Status = models.LiveStatusHalftime
	}
	if reFullTime.MatchString(text) {
		m.Status = models.LiveStatusFinished
	}
	return m
}
