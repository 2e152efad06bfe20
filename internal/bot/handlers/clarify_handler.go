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

// clarifyPrefix starts the callback data of every clarification button:
// "clarify:<ticket-id>:<category>".
const clarifyPrefix = "clarify:"

// NewClarifyHandler returns a handler for clarification keyboard callbacks.
// It resolves the ticket back to the original text and files it under the
// category the user picked, with full confidence.
func NewClarifyHandler(deps HandlerDeps) bot.HandlerFunc {
	return clarifyHandler{deps}.Handle
}

type clarifyHandler struct {
	deps HandlerDeps
}

func (h clarifyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "clarify")

	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	// Acknowledge right away so the button stops its spinner even if the
	// rest of the work fails.
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "callback_id", cb.ID)
	}

	msg := cb.Message.Message
	if msg == nil {
		log.WarnContext(ctx, "Callback query message no longer accessible", "callback_id", cb.ID)
		return
	}
	chatID := msg.Chat.ID
	messageID := msg.ID

	edit := func(text string) {
		_, editErr := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
		})
		if editErr != nil {
			log.ErrorContext(ctx, "Failed to edit clarification message", "error", editErr, "chat_id", chatID)
		}
	}

	id, category, ok := parseClarifyCallback(cb.Data)
	if !ok {
		log.WarnContext(ctx, "Malformed clarification callback", "data", cb.Data)
		return
	}

	// The callback sender decides the identity, not the chat the keyboard
	// was posted in.
	identity := strconv.FormatInt(cb.From.ID, 10)

	user, err := h.deps.Store.GetUser(ctx, identity)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up user", "error", err, "chat_id", identity)
		edit(h.deps.Config.Messages.GeneralError)
		return
	}
	if user == nil || !user.Authorized {
		log.WarnContext(ctx, "Unauthorized clarification attempt", "chat_id", identity)
		edit(fmt.Sprintf(h.deps.Config.Messages.NotAuthorized, identity))
		return
	}

	text, found := h.deps.Tickets.Resolve(id)
	if !found {
		log.InfoContext(ctx, "Clarification ticket expired or unknown", "ticket_id", id, "chat_id", identity)
		edit(h.deps.Config.Messages.ClarifyExpired)
		return
	}

	log.InfoContext(ctx, "Filing clarified message", "ticket_id", id, "category", category, "chat_id", identity)

	parsed := sheets.ParsedMessage{
		Category:    category,
		Confidence:  1.0,
		Description: text,
		Notes:       text,
	}

	reply, err := fileMessage(ctx, h.deps, parsed, text, user.DisplayName(), identity)
	if err != nil {
		log.ErrorContext(ctx, "Failed to file clarified message", "error", err, "chat_id", identity)
		edit(h.deps.Config.Messages.GeneralError)
		NotifyAdmins(ctx, b, h.deps, fmt.Sprintf("⚠️ Clarification failed: %v (user %s)", err, user.DisplayName()))
		return
	}
	edit(reply)
}

// parseClarifyCallback splits callback data of the form
// "clarify:<ticket-id>:<category>". Unknown categories map to other so a
// stale keyboard still files somewhere visible.
func parseClarifyCallback(data string) (id string, category sheets.Category, ok bool) {
	rest, found := strings.CutPrefix(data, clarifyPrefix)
	if !found {
		return "", "", false
	}
	id, rawCategory, found := strings.Cut(rest, ":")
	if !found || id == "" {
		return "", "", false
	}
	category, _ = sheets.ParseCategory(rawCategory)
	return id, category, true
}

// clarifyKeyboard builds the category picker shown under a clarification
// prompt, two buttons per row.
func clarifyKeyboard(id string) *models.InlineKeyboardMarkup {
	btn := func(label string, category sheets.Category) models.InlineKeyboardButton {
		return models.InlineKeyboardButton{
			Text:         label,
			CallbackData: clarifyPrefix + id + ":" + string(category),
		}
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{btn("🍼 Food", sheets.CategoryFood), btn("😴 Sleep", sheets.CategorySleep)},
			{btn("😢 Crying", sheets.CategoryCry), btn("📝 Behavior", sheets.CategoryBehavior)},
			{btn("❓ Question", sheets.CategoryQuestion), btn("🤷 Other", sheets.CategoryOther)},
		},
	}
}
