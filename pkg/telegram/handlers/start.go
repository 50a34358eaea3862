package handlers

import (
	"context"
	"log/slog"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	welcomeText        = "🤖 Snarky Facts Generator\n\nGet AI-generated trivia with attitude and matching visuals!"
	generateButtonText = "Generate Mind-Blowing Fact"
	anotherButtonText  = "Another one"
)

func generateKeyboard(text string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: text, CallbackData: domain.GenerateCallbackData}},
		},
	}
}

func Start() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}

		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          update.Message.Chat.ID,
			MessageThreadID: update.Message.MessageThreadID,
			Text:            welcomeText,
			ReplyMarkup:     generateKeyboard(generateButtonText),
		}); err != nil {
			slog.ErrorContext(ctx, "sending welcome message", logger.Err(err))
		}
	}
}
