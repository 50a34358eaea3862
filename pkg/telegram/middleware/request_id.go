package middleware

import (
	"context"

	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// RequestID gives every update its own id in the logging context.
func RequestID(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		next(logger.WithRequestID(ctx, uuid.NewString()), b, update)
	}
}
