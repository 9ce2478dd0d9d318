package worker

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "Manchester United", "Manchester United"},
		{"Tab", "Real\tMadrid", "RealMadrid"},
		{"Newline", "Boston\nBruins", "BostonBruins"},
		{"Unicode kept", "Atlético Madrid", "Atlético Madrid"},
		{"Empty", "", ""},
		{"Truncated", strings.Repeat("a", maxTextLength+5), strings.Repeat("a", maxTextLength)},
		{"Multibyte truncation", strings.Repeat("é", maxTextLength+1), strings.Repeat("é", maxTextLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeText(tt.input)
			if got != tt.expected {
				t.Errorf("sanitizeText(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func BenchmarkSanitizeText(b *testing.B) {
	input := "Brighton & Hove Albion\tvs\tWolverhampton Wanderers"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sanitizeText(input)
	}
}
