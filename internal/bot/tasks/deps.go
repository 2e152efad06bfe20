// Package tasks implements the scheduled report tasks for the NanaBot
// Telegram bot, along with their registration mechanism.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/qa"
	"github.com/edgard/nanabot/internal/sheets"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  sheets.Store
	QA     *qa.Service
	TgBot  *tgbot.Bot
}

// localNow returns the current time in the configured timezone. Config
// validation guarantees the timezone loads; the fallback is never hit after
// a successful startup.
func (d TaskDeps) localNow() time.Time {
	loc, err := d.Config.Location()
	if err != nil {
		return time.Now()
	}
	return time.Now().In(loc)
}

// sendToAdmins delivers a message to every admin in the user registry,
// logging per-admin delivery failures. It returns an error only when no
// admin received the message or the registry could not be read.
func sendToAdmins(ctx context.Context, deps TaskDeps, log *slog.Logger, text string) error {
	adminIDs, err := deps.Store.AdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}
	if len(adminIDs) == 0 {
		log.WarnContext(ctx, "No admins configured, dropping report")
		return nil
	}

	delivered := 0
	for _, adminID := range adminIDs {
		_, err := deps.TgBot.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: adminID, Text: text})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send report to admin", "error", err, "admin_id", adminID)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("failed to deliver report to any of %d admins", len(adminIDs))
	}
	return nil
}

// alertAdmins reports a task failure to the admins. Alert delivery problems
// are only logged; a broken report must never take the scheduler down.
func alertAdmins(ctx context.Context, deps TaskDeps, log *slog.Logger, taskName string, taskErr error) {
	alert := fmt.Sprintf("%s\n⚠️ Scheduled task %s failed: %v", deps.Config.Messages.AdminAlertHeader, taskName, taskErr)
	if err := sendToAdmins(ctx, deps, log, alert); err != nil {
		log.ErrorContext(ctx, "Failed to alert admins about task failure", "error", err, "task_name", taskName)
	}
}
