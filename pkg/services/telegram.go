package services

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
)

type telegramBot struct {
	b *bot.Bot
}

func NewTelegramBot(b *bot.Bot) (*telegramBot, error) {
	if b == nil {
		return nil, errors.New("bot cannot be nil")
	}
	return &telegramBot{b: b}, nil
}

func (t *telegramBot) Name() string {
	return "telegram bot"
}

// Start long-polls for updates until ctx is cancelled.
func (t *telegramBot) Start(ctx context.Context) error {
	t.b.Start(ctx)
	return nil
}
