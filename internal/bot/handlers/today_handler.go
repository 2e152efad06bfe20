package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTodayHandler returns a handler for the /today command.
func NewTodayHandler(deps HandlerDeps) bot.HandlerFunc {
	return todayHandler{deps}.Handle
}

// todayHandler processes the /today command using injected dependencies.
type todayHandler struct {
	deps HandlerDeps
}

func (h todayHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "today")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Today handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	identity := strconv.FormatInt(chatID, 10)
	log.InfoContext(ctx, "Handling /today command", "chat_id", identity)

	if _, ok := authorize(ctx, b, h.deps, chatID, identity); !ok {
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	summary, err := h.deps.QA.DailySummary(ctx, time.Time{})
	if err != nil {
		log.ErrorContext(ctx, "Failed to build daily summary", "error", err, "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
		}
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: summary})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send daily summary", "error", err, "chat_id", identity)
	}
}
