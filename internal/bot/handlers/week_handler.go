package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewWeekHandler returns a handler for the /week command.
func NewWeekHandler(deps HandlerDeps) bot.HandlerFunc {
	return weekHandler{deps}.Handle
}

// weekHandler processes the /week command using injected dependencies.
type weekHandler struct {
	deps HandlerDeps
}

func (h weekHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "week")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Week handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	identity := strconv.FormatInt(chatID, 10)
	log.InfoContext(ctx, "Handling /week command", "chat_id", identity)

	if _, ok := authorize(ctx, b, h.deps, chatID, identity); !ok {
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	summary, err := h.deps.QA.WeeklySummary(ctx, time.Time{})
	if err != nil {
		log.ErrorContext(ctx, "Failed to build weekly summary", "error", err, "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
		}
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: summary})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send weekly summary", "error", err, "chat_id", identity)
	}
}
