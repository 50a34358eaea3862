package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type triviaCardGenerator interface {
	Run(ctx context.Context, onState func(domain.State)) (*domain.Card, error)
}

// GenerateTrivia runs one cycle for a /trivia command or a press of the generate button
// and replies with the card image, captioned with the trivia, followed by both downloads.
func GenerateTrivia(generator triviaCardGenerator) bot.HandlerFunc {
	chatAction := func(s domain.State) models.ChatAction {
		if s == domain.StateAwaitingImage {
			return models.ChatActionUploadPhoto
		}
		return models.ChatActionTyping
	}

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var (
			chatID  int64
			topicID int
		)

		switch {
		case update.Message != nil:
			chatID = update.Message.Chat.ID
			topicID = update.Message.MessageThreadID
		case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
			chatID = update.CallbackQuery.Message.Message.Chat.ID
			topicID = update.CallbackQuery.Message.Message.MessageThreadID

			b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
				CallbackQueryID: update.CallbackQuery.ID,
				ShowAlert:       false,
			})
		default:
			return
		}

		card, err := generator.Run(ctx, func(s domain.State) {
			if s != domain.StateAwaitingTrivia && s != domain.StateAwaitingImage {
				return
			}
			if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
				ChatID:          chatID,
				MessageThreadID: topicID,
				Action:          chatAction(s),
			}); err != nil {
				slog.WarnContext(ctx, "sending chat action", logger.Err(err))
			}
		})
		if err != nil {
			if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:          chatID,
				MessageThreadID: topicID,
				Text:            fmt.Sprintf("❌ %s", err),
				ReplyMarkup:     generateKeyboard(generateButtonText),
			}); sendErr != nil {
				slog.ErrorContext(ctx, "sending error message", "cause", err.Error(), logger.Err(sendErr))
			}
			return
		}

		slog.InfoContext(ctx, "Card generated", "trivia", card.Trivia, "imageSize", len(card.Image))

		if _, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:          chatID,
			MessageThreadID: topicID,
			Photo: &models.InputFileUpload{
				Filename: domain.ImageFileName,
				Data:     bytes.NewReader(card.Image),
			},
			Caption:     card.Trivia,
			ReplyMarkup: generateKeyboard(anotherButtonText),
		}); err != nil {
			slog.ErrorContext(ctx, "sending card photo", logger.Err(err))
			if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:          chatID,
				MessageThreadID: topicID,
				Text:            fmt.Sprintf("❌ Could not send the card: %s", err),
			}); sendErr != nil {
				slog.ErrorContext(ctx, "sending error message", logger.Err(sendErr))
			}
			return
		}

		for _, d := range card.Downloads {
			if _, err := b.SendDocument(ctx, &bot.SendDocumentParams{
				ChatID:          chatID,
				MessageThreadID: topicID,
				Document: &models.InputFileUpload{
					Filename: d.FileName,
					Data:     bytes.NewReader(d.Data),
				},
			}); err != nil {
				slog.ErrorContext(ctx, "sending download", "file", d.FileName, logger.Err(err))
			}
		}
	}
}
