package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matchoracle/prediction-api/internal/models"
)

type fakeSender struct {
	failures int
	calls    int
	sent     []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.calls <= f.failures {
		return tgbotapi.Message{}, errors.New("telegram: too many requests")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func sampleRecord() *models.PredictionRecord {
	league := "Premier League"
	return &models.PredictionRecord{
		ID:                   "p1",
		Sport:                models.SportSoccer,
		HomeTeam:             "Brighton & Hove Albion",
		AwayTeam:             "Spurs",
		PredictedHomeScore:   2,
		PredictedAwayScore:   1,
		ConfidencePercentage: 71,
		LeagueName:           &league,
	}
}

func sampleAnalysis(value float64) *models.PredictionAnalysis {
	return &models.PredictionAnalysis{
		RiskAssessment: models.RiskMedium,
		RecommendedBet: "Home win (2.10)",
		MarketAnalysis: &models.MarketAnalysis{ValueRating: value, ExpectedOdds: "2.10", MarketSentiment: "bullish"},
	}
}

func newTestNotifier(t *testing.T, s sender) *TelegramNotifier {
	t.Helper()
	n, err := newTelegramNotifier(s, TelegramConfig{ChatID: "-100123", MinValueRating: 8, RetryDelayBase: time.Millisecond})
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	return n
}

func TestNotifyPredictionBelowThreshold(t *testing.T) {
	s := &fakeSender{}
	n := newTestNotifier(t, s)

	if err := n.NotifyPrediction(context.Background(), sampleRecord(), sampleAnalysis(7.9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.NotifyPrediction(context.Background(), sampleRecord(), &models.PredictionAnalysis{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.calls != 0 {
		t.Errorf("sent %d messages, want 0", s.calls)
	}
}

func TestNotifyPredictionSends(t *testing.T) {
	s := &fakeSender{}
	n := newTestNotifier(t, s)

	if err := n.NotifyPrediction(context.Background(), sampleRecord(), sampleAnalysis(8.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.sent))
	}

	msg := s.sent[0]
	if msg.ChatID != -100123 {
		t.Errorf("ChatID = %d", msg.ChatID)
	}
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("ParseMode = %q", msg.ParseMode)
	}
	for _, want := range []string{"Brighton & Hove Albion", "2\\-1", "8\\.5/10", "Premier League", "Home win \\(2\\.10\\)"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestNotifyPredictionRetries(t *testing.T) {
	s := &fakeSender{failures: 2}
	n := newTestNotifier(t, s)

	if err := n.NotifyPrediction(context.Background(), sampleRecord(), sampleAnalysis(9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.calls != 3 {
		t.Errorf("calls = %d, want 3", s.calls)
	}

	s = &fakeSender{failures: 10}
	n = newTestNotifier(t, s)
	if err := n.NotifyPrediction(context.Background(), sampleRecord(), sampleAnalysis(9)); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestNotifyPredictionCancelled(t *testing.T) {
	s := &fakeSender{failures: 10}
	n := newTestNotifier(t, s)
	n.retryDelayBase = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.NotifyPrediction(ctx, sampleRecord(), sampleAnalysis(9))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := map[string]string{
		"plain":       "plain",
		"1.5":         "1\\.5",
		"a_b*c":       "a\\_b\\*c",
		"(x) [y] !":   "\\(x\\) \\[y\\] \\!",
		"back\\slash": "back\\\\slash",
	}
	for in, want := range tests {
		if got := escapeMarkdownV2(in); got != want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInvalidChatID(t *testing.T) {
	if _, err := newTelegramNotifier(&fakeSender{}, TelegramConfig{ChatID: "channel"}); err == nil {
		t.Error("expected error for non-numeric chat id")
	}
}
