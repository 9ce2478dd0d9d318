// Package notify delivers high-value prediction alerts to Telegram.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/models"
)

// sender is the subset of *tgbotapi.BotAPI the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts an alert when a prediction's market value rating
// reaches the configured threshold
type TelegramNotifier struct {
	bot            sender
	chatID         int64
	minValue       float64
	maxRetries     int
	retryDelayBase time.Duration
	logger         *zap.SugaredLogger
}

// TelegramConfig configures the notifier
type TelegramConfig struct {
	BotToken       string
	ChatID         string
	MinValueRating float64
	MaxRetries     int
	RetryDelayBase time.Duration
	Logger         *zap.Logger
}

func NewTelegramNotifier(cfg TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, cfg)
}

func newTelegramNotifier(bot sender, cfg TelegramConfig) (*TelegramNotifier, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		minValue:       cfg.MinValueRating,
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		logger:         cfg.Logger.Sugar(),
	}, nil
}

// Qualifies reports whether the analysis crosses the alert threshold
func (n *TelegramNotifier) Qualifies(analysis *models.PredictionAnalysis) bool {
	return analysis != nil && analysis.MarketAnalysis != nil && analysis.MarketAnalysis.ValueRating >= n.minValue
}

// NotifyPrediction sends the alert if the prediction qualifies. Delivery is
// retried with linear backoff until ctx ends.
func (n *TelegramNotifier) NotifyPrediction(ctx context.Context, record *models.PredictionRecord, analysis *models.PredictionAnalysis) error {
	if !n.Qualifies(analysis) {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, formatPrediction(record, analysis))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		_, err := n.bot.Send(msg)
		if err == nil {
			n.logger.Infow("Value alert sent", "prediction", record.ID, "value_rating", analysis.MarketAnalysis.ValueRating)
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("value alert cancelled: %w", ctx.Err())
		case <-time.After(n.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", n.maxRetries, lastErr)
}

// formatPrediction renders the MarkdownV2 alert body
func formatPrediction(record *models.PredictionRecord, analysis *models.PredictionAnalysis) string {
	var b strings.Builder

	b.WriteString("*High value prediction*\n\n")
	fmt.Fprintf(&b, "%s vs %s \\(%s\\)\n",
		escapeMarkdownV2(record.HomeTeam),
		escapeMarkdownV2(record.AwayTeam),
		escapeMarkdownV2(record.Sport.Info().Name))
	if record.LeagueName != nil && *record.LeagueName != "" {
		fmt.Fprintf(&b, "League: %s\n", escapeMarkdownV2(*record.LeagueName))
	}
	fmt.Fprintf(&b, "Predicted score: *%s*\n", escapeMarkdownV2(fmt.Sprintf("%d-%d", record.PredictedHomeScore, record.PredictedAwayScore)))
	fmt.Fprintf(&b, "Confidence: %s\n", escapeMarkdownV2(fmt.Sprintf("%.0f%%", record.ConfidencePercentage)))

	ma := analysis.MarketAnalysis
	fmt.Fprintf(&b, "Value rating: *%s*\n", escapeMarkdownV2(fmt.Sprintf("%.1f/10", ma.ValueRating)))
	if ma.ExpectedOdds != "" {
		fmt.Fprintf(&b, "Expected odds: %s\n", escapeMarkdownV2(ma.ExpectedOdds))
	}
	if analysis.RiskAssessment != "" {
		fmt.Fprintf(&b, "Risk: %s\n", escapeMarkdownV2(analysis.RiskAssessment))
	}
	if analysis.RecommendedBet != "" {
		fmt.Fprintf(&b, "\n%s\n", escapeMarkdownV2(analysis.RecommendedBet))
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
