package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/nanabot/internal/dispatch"
	"github.com/edgard/nanabot/internal/sheets"
)

// NewMessageHandler returns the default handler for free-text messages. It
// runs the cheap gates (rate limit, authorization) inline, then hands the
// message to the dispatch pool so classification and storage never block the
// update loop.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	chatID := update.Message.Chat.ID
	identity := strconv.FormatInt(chatID, 10)

	// The rate limit runs before the user lookup so floods are rejected
	// without touching storage.
	if !h.deps.Limiter.Allow(identity) {
		log.WarnContext(ctx, "Rate limit exceeded", "chat_id", identity)
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.RateLimited})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send rate limit message", "error", err, "chat_id", identity)
		}
		return
	}

	user, ok := authorize(ctx, b, h.deps, chatID, identity)
	if !ok {
		return
	}
	userName := user.DisplayName()

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	err := h.deps.Pool.Submit(identity, func(taskCtx context.Context) {
		h.process(taskCtx, b, chatID, identity, userName, text)
	})
	switch {
	case err == nil:
	case errors.Is(err, dispatch.ErrQueueFull):
		log.WarnContext(ctx, "Dispatch queue full", "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.QueueFull})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send queue full message", "error", sendErr, "chat_id", identity)
		}
	case errors.Is(err, dispatch.ErrStopped):
		log.WarnContext(ctx, "Dropping message, dispatch pool stopped", "chat_id", identity)
	default:
		log.ErrorContext(ctx, "Failed to submit message for processing", "error", err, "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
		}
	}
}

// process classifies the message and either files it, asks for clarification,
// or answers it as a question. It runs on the dispatch pool.
func (h messageHandler) process(ctx context.Context, b *bot.Bot, chatID int64, identity, userName, text string) {
	log := h.deps.Logger.With("handler", "message")

	parsed := h.deps.AI.Classify(ctx, text)
	log.InfoContext(ctx, "Classified message",
		"chat_id", identity,
		"category", parsed.Category,
		"confidence", parsed.Confidence,
	)

	if needsClarification(parsed, h.deps.Config.Limits.ConfidenceThreshold) {
		h.askClarification(ctx, b, chatID, identity, text, parsed)
		return
	}

	reply, err := fileMessage(ctx, h.deps, parsed, text, userName, identity)
	if err != nil {
		log.ErrorContext(ctx, "Failed to process message", "error", err, "chat_id", identity)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", identity)
		}
		NotifyAdmins(ctx, b, h.deps, fmt.Sprintf("⚠️ Message processing failed: %v (user %s)", err, userName))
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", identity)
	}
}

// needsClarification reports whether a classification is too uncertain to
// file automatically. Confidence exactly at the threshold files.
func needsClarification(pm sheets.ParsedMessage, threshold float64) bool {
	return pm.Confidence < threshold
}

// askClarification stores the original text under a ticket and offers the
// category keyboard. Nothing is saved until the user picks a category.
func (h messageHandler) askClarification(ctx context.Context, b *bot.Bot, chatID int64, identity, text string, parsed sheets.ParsedMessage) {
	log := h.deps.Logger.With("handler", "message")

	id := h.deps.Tickets.Put(text)
	prompt := fmt.Sprintf(h.deps.Config.Messages.ClarifyPrompt, text, parsed.Category, parsed.Confidence*100)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        prompt,
		ReplyMarkup: clarifyKeyboard(id),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send clarification prompt", "error", err, "chat_id", identity)
	}
}

// fileMessage routes a classified message to its destination: records are
// appended to their sheet and confirmed, questions go to the QA service. The
// returned string is the reply for the user.
func fileMessage(ctx context.Context, deps HandlerDeps, parsed sheets.ParsedMessage, text, userName, identity string) (string, error) {
	rec, ok := sheets.BuildRecord(parsed, text, userName, deps.localNow())
	if !ok {
		return deps.QA.Answer(ctx, text, identity, userName)
	}

	if err := deps.Store.AppendRecord(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to append %s record: %w", rec.Sheet(), err)
	}
	return rec.Confirmation(), nil
}
