// Package notify pushes metric snapshots to a Telegram chat.
package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/internal/catalog"
	"github.com/Alias1177/MarketMetrics/internal/render"
)

// Telegram sends snapshot summaries to one chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// SendSnapshot formats the results as a compact text summary and sends it.
func (t *Telegram) SendSnapshot(results []*catalog.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("nothing to send")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market metrics %s\n", time.Now().UTC().Format("2006-01-02"))
	for _, res := range results {
		fmt.Fprintf(&b, "\n%s\n", res.Title)
		for _, row := range res.Rows {
			fmt.Fprintf(&b, "  %s: %s (as of %s)\n",
				row.Label, render.FormatValue(row.Value, row.Unit), row.Date.Format("2006-01-02"))
		}
	}

	msg := tgbotapi.NewMessage(t.chatID, b.String())
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Int64("chat_id", t.chatID).Msg("Telegram send failed")
		return fmt.Errorf("sending telegram message: %w", err)
	}
	t.logger.Info().Int("metrics", len(results)).Msg("Snapshot sent to Telegram")
	return nil
}
