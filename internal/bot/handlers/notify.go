package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
)

// NotifyAdmins sends an alert message to every admin listed in the user
// registry. Delivery failures are logged per admin and never interrupt the
// caller.
func NotifyAdmins(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, message string) {
	log := deps.Logger.With("component", "admin_notify")

	adminIDs, err := deps.Store.AdminIDs(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list admins for notification", "error", err)
		return
	}
	if len(adminIDs) == 0 {
		log.WarnContext(ctx, "No admins configured, dropping notification")
		return
	}

	text := deps.Config.Messages.AdminAlertHeader + "\n" + message
	for _, adminID := range adminIDs {
		_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: adminID,
			Text:   text,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to notify admin", "error", err, "admin_id", adminID)
		}
	}
}
