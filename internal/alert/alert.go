// Package alert notifies operators about events that lose data, such as a race record that could not be stored.
package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/metrics"
)

// Notifier delivers operator alerts
type Notifier interface {
	Notify(ctx context.Context, title, detail string) error
}

// NopNotifier drops every alert
type NopNotifier struct{}

// Notify does nothing
func (NopNotifier) Notify(context.Context, string, string) error { return nil }

// sender is the part of *tgbotapi.BotAPI used for delivery
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends alerts to a Telegram chat with linear-backoff retry
type TelegramNotifier struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramNotifier creates a notifier for the given bot token and chat
func NewTelegramNotifier(botToken string, chatID int64, maxRetries int, retryDelayBase time.Duration) (*TelegramNotifier, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat ID is required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, maxRetries, retryDelayBase), nil
}

func newTelegramNotifier(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *TelegramNotifier {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// FromConfig returns a Telegram notifier when alerts are enabled and a no-op notifier otherwise
func FromConfig(cfg config.AlertsConfig) (Notifier, error) {
	if !cfg.Enabled {
		return NopNotifier{}, nil
	}
	return NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, 3, time.Second)
}

// Notify sends a MarkdownV2 alert, retrying until it succeeds or ctx ends
func (n *TelegramNotifier) Notify(ctx context.Context, title, detail string) error {
	msg := tgbotapi.NewMessage(n.chatID, formatAlert(title, detail))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		if _, err := n.bot.Send(msg); err == nil {
			metrics.RecordAlert("sent")
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			metrics.RecordAlert("failed")
			return fmt.Errorf("alert cancelled: %w", ctx.Err())
		case <-time.After(n.retryDelayBase * time.Duration(i+1)):
		}
	}

	metrics.RecordAlert("failed")
	return fmt.Errorf("failed after %d retries: %w", n.maxRetries, lastErr)
}

func formatAlert(title, detail string) string {
	text := fmt.Sprintf("⚠️ *%s*", escapeMarkdownV2(title))
	if detail != "" {
		text += fmt.Sprintf("\n`%s`", escapeMarkdownV2(detail))
	}
	return text
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
