package models

import (
	"fmt"
	"strings"
)

// Sport is the closed set of sports the prediction engine accepts.
type Sport uint8

const (
	SportSoccer Sport = iota
	SportTennis
	SportBasketball
	SportHockey
	SportTableTennis

	sportCount
)

// SportInfo holds the display metadata the front-end renders for a sport
type SportInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
	HomePlaceholder   string `json:"home_placeholder"`
	AwayPlaceholder   string `json:"away_placeholder"`
	LeaguePlaceholder string `json:"league_placeholder"`
}

var sportCatalog = [...]SportInfo{
	SportSoccer: {
		ID:                "soccer",
		Name:              "Soccer",
		Description:       "FIFA leagues worldwide",
		Icon:              "zap",
		HomePlaceholder:   "e.g., Manchester United",
		AwayPlaceholder:   "e.g., Liverpool",
		LeaguePlaceholder: "e.g., Premier League, Champions League",
	},
	SportTennis: {
		ID:                "tennis",
		Name:              "Tennis",
		Description:       "ATP & WTA tournaments",
		Icon:              "target",
		HomePlaceholder:   "e.g., Novak Djokovic",
		AwayPlaceholder:   "e.g., Rafael Nadal",
		LeaguePlaceholder: "e.g., Wimbledon, US Open, ATP Masters",
	},
	SportBasketball: {
		ID:                "basketball",
		Name:              "Basketball",
		Description:       "NBA, EuroLeague & more",
		Icon:              "trophy",
		HomePlaceholder:   "e.g., Los Angeles Lakers",
		AwayPlaceholder:   "e.g., Golden State Warriors",
		LeaguePlaceholder: "e.g., NBA, EuroLeague, NCAA",
	},
	SportHockey: {
		ID:                "hockey",
		Name:              "Hockey",
		Description:       "NHL & international",
		Icon:              "timer",
		HomePlaceholder:   "e.g., New York Rangers",
		AwayPlaceholder:   "e.g., Boston Bruins",
		LeaguePlaceholder: "e.g., NHL, IIHF World Championship",
	},
	SportTableTennis: {
		ID:                "table_tennis",
		Name:              "Table Tennis",
		Description:       "ITTF competitions",
		Icon:              "dumbbell",
		HomePlaceholder:   "e.g., Ma Long",
		AwayPlaceholder:   "e.g., Fan Zhendong",
		LeaguePlaceholder: "e.g., ITTF World Tour, Olympics",
	},
}

// Both assertions fail to compile unless every Sport has a catalog entry.
var (
	_ [len(sportCatalog) - int(sportCount)]struct{}
	_ [int(sportCount) - len(sportCatalog)]struct{}
)

// AllSports returns every supported sport in catalog order
func AllSports() []Sport {
	out := make([]Sport, 0, sportCount)
	for s := Sport(0); s < sportCount; s++ {
		out = append(out, s)
	}
	return out
}

// ParseSport resolves a sport identifier such as "table_tennis"
func ParseSport(s string) (Sport, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for i, info := range sportCatalog {
		if info.ID == id {
			return Sport(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sport: %q", s)
}

func (s Sport) Valid() bool { return s < sportCount }

// Info returns the catalog entry. Panics on an invalid Sport.
func (s Sport) Info() SportInfo { return sportCatalog[s] }

func (s Sport) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sport(%d)", uint8(s))
	}
	return sportCatalog[s].ID
}

func (s Sport) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sport %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Sport) UnmarshalText(text []byte) error {
	parsed, err := ParseSport(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
