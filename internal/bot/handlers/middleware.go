// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/nanabot/internal/sheets"
)

// authorize looks up the sender in the user registry and replies with the
// appropriate refusal when they are unknown or not authorized. It returns the
// user and true only when processing should continue.
func authorize(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, chatID int64, identity string) (*sheets.User, bool) {
	log := deps.Logger.With("component", "authorize")

	user, err := deps.Store.GetUser(ctx, identity)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up user", "error", err, "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   deps.Config.Messages.GeneralError,
		})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
		}
		return nil, false
	}

	if user == nil || !user.Authorized {
		log.WarnContext(ctx, "Unauthorized access attempt", "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf(deps.Config.Messages.NotAuthorized, identity),
		})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send unauthorized message", "error", sendErr, "chat_id", identity)
		}
		return nil, false
	}

	return user, true
}

// AdminOnly creates a middleware that restricts a handler to users flagged as
// admins in the user registry. Everyone else gets a refusal message.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			identity := strconv.FormatInt(chatID, 10)
			log := deps.Logger.With("middleware", "AdminOnly")

			user, err := deps.Store.GetUser(ctx, identity)
			if err != nil {
				log.ErrorContext(ctx, "Failed to look up user", "error", err, "chat_id", identity)
				_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.GeneralError,
				})
				if sendErr != nil {
					log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
				}
				return
			}

			if user == nil || !user.IsAdmin {
				log.WarnContext(ctx, "Non-admin tried an admin command", "chat_id", identity)
				_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.AdminOnly,
				})
				if sendErr != nil {
					log.ErrorContext(ctx, "Failed to send admin-only message", "error", sendErr, "chat_id", identity)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
