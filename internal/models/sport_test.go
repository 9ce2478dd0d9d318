package models

import (
	"encoding/json"
	"testing"
)

func TestParseSport(t *testing.T) {
	tests := []struct {
		input   string
		want    Sport
		wantErr bool
	}{
		{"soccer", SportSoccer, false},
		{" Tennis ", SportTennis, false},
		{"basketball", SportBasketball, false},
		{"hockey", SportHockey, false},
		{"table_tennis", SportTableTennis, false},
		{"cricket", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSport(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSport(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSport(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSportCatalogComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range AllSports() {
		info := s.Info()
		if info.ID == "" || info.Name == "" || info.HomePlaceholder == "" || info.AwayPlaceholder == "" {
			t.Errorf("sport %d has incomplete catalog entry: %+v", s, info)
		}
		if seen[info.ID] {
			t.Errorf("duplicate sport id %q", info.ID)
		}
		seen[info.ID] = true
	}
	if len(seen) != 5 {
		t.Errorf("got %d sports, want 5", len(seen))
	}
}

func TestSportJSONRoundTrip(t *testing.T) {
	var req MatchRequest
	if err := json.Unmarshal([]byte(`{"sport":"table_tennis","home_team":"Ma Long","away_team":"Fan Zhendong"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Sport != SportTableTennis {
		t.Errorf("Sport = %v, want table_tennis", req.Sport)
	}

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	_ = json.Unmarshal(b, &back)
	if back["sport"] != "table_tennis" {
		t.Errorf("sport = %v, want table_tennis", back["sport"])
	}

	if err := json.Unmarshal([]byte(`{"sport":"curling"}`), &req); err == nil {
		t.Error("expected error for unknown sport")
	}
}

func TestInvalidSportString(t *testing.T) {
	s := Sport(42)
	if s.Valid() {
		t.Error("Sport(42) should be invalid")
	}
	if s.String() != "Sport(42)" {
		t.Errorf("String() = %q", s.String())
	}
	if _, err := s.MarshalText(); err == nil {
		t.Error("expected MarshalText error for invalid sport")
	}
}
