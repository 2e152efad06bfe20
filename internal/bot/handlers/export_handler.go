package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/nanabot/internal/sheets"
)

// NewExportHandler returns a handler for the /export command.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

// exportHandler processes the /export command using injected dependencies.
// It snapshots the full log into an xlsx workbook and sends it as a document,
// regardless of which backend stores the live data.
type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Export handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	identity := strconv.FormatInt(chatID, 10)
	log.InfoContext(ctx, "Handling /export command", "chat_id", identity)

	if _, ok := authorize(ctx, b, h.deps, chatID, identity); !ok {
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionUploadDocument})

	wb, err := sheets.BuildWorkbook(ctx, h.deps.Store)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build export workbook", "error", err, "chat_id", identity)
		h.sendError(ctx, b, chatID, identity)
		return
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		log.ErrorContext(ctx, "Failed to serialize export workbook", "error", err, "chat_id", identity)
		h.sendError(ctx, b, chatID, identity)
		return
	}

	filename := fmt.Sprintf("nanabot-export-%s.xlsx", h.deps.localNow().Format("2006-01-02"))
	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: buf},
		Caption:  h.deps.Config.Messages.ExportCaption,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send export document", "error", err, "chat_id", identity)
		h.sendError(ctx, b, chatID, identity)
		return
	}

	// The Google backend has a canonical online copy worth linking too.
	if h.deps.Config.Storage.Backend == "google" && h.deps.Config.Storage.SheetID != "" {
		link := "🔗 https://docs.google.com/spreadsheets/d/" + h.deps.Config.Storage.SheetID
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: link})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send sheet link", "error", err, "chat_id", identity)
		}
	}
}

func (h exportHandler) sendError(ctx context.Context, b *bot.Bot, chatID int64, identity string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", identity)
	}
}
