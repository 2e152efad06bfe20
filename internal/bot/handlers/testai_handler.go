package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/nanabot/internal/sheets"
)

// NewTestAIHandler returns a handler for the /testai command. It runs the
// classifier on the given text and reports the raw result without saving
// anything. Registration wraps it in the AdminOnly middleware.
func NewTestAIHandler(deps HandlerDeps) bot.HandlerFunc {
	return testAIHandler{deps}.Handle
}

type testAIHandler struct {
	deps HandlerDeps
}

func (h testAIHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "testai")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "TestAI handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	identity := strconv.FormatInt(chatID, 10)

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.TestAIUsage})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send usage message", "error", err, "chat_id", identity)
		}
		return
	}
	text := strings.Join(fields[1:], " ")

	log.InfoContext(ctx, "Handling /testai command", "chat_id", identity, "text", text)
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	parsed := h.deps.AI.Classify(ctx, text)
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: formatTestAIResult(text, parsed)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send classification result", "error", err, "chat_id", identity)
	}
}

// formatTestAIResult renders a classification for inspection, with N/A
// standing in for fields the model left empty.
func formatTestAIResult(text string, pm sheets.ParsedMessage) string {
	var sb strings.Builder
	sb.WriteString("🧠 Classification result\n")
	fmt.Fprintf(&sb, "📝 Text: %s\n", text)
	fmt.Fprintf(&sb, "🏷️ Category: %s\n", pm.Category)
	fmt.Fprintf(&sb, "📊 Confidence: %.1f%%\n", pm.Confidence*100)
	fmt.Fprintf(&sb, "📦 Item: %s\n", orNA(pm.Item))
	fmt.Fprintf(&sb, "🔢 Quantity: %s\n", formatQuantity(pm.QtyValue, pm.QtyUnit))
	fmt.Fprintf(&sb, "⚡ Method: %s\n", orNA(pm.Method))
	fmt.Fprintf(&sb, "💭 Notes: %s", orNA(pm.Notes))
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func formatQuantity(value *float64, unit string) string {
	if value == nil {
		return "N/A"
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", *value, unit))
}
