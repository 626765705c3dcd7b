// Package notifier pushes trade alerts to the operator. Telegram is the
// real channel; Noop stands in when no token is configured.
package notifier

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"equity-scanner-bot/internal/logger"
)

// Notifier delivers one human-readable message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Telegram sends Markdown messages to a fixed chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects the bot. chatID is the numeric chat as a string, the
// way it arrives from the environment.
func NewTelegram(token, chatID string) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info(context.Background(), "Telegram bot connected", "username", api.Self.UserName)
	return &Telegram{api: api, chatID: id}, nil
}

func (t *Telegram) Notify(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	msg.ParseMode = "Markdown"
	if _, err := t.api.Send(msg); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send telegram message", err)
		return err
	}
	return nil
}

// Noop drops every message.
type Noop struct{}

func (Noop) Notify(_ context.Context, _ string) error { return nil }
