// Package telegram handles the setup and registration of Telegram bot handlers.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/nanabot/internal/bot/handlers"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8] + "..."
	}
	log.Info("Telegram bot instance created successfully", "token_prefix", prefix)
	return b, nil
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command, message, and callback handlers with the
// Telegram bot instance, applying each handler's middleware chain.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler", "name", name, "pattern", regHandler.Pattern, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// SetBotCommands publishes the command menu shown by Telegram clients.
func SetBotCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	commands := []models.BotCommand{
		{Command: "start", Description: "Say hi and check the bot is awake"},
		{Command: "help", Description: "How to log events and ask questions"},
		{Command: "today", Description: "Today's log summary"},
		{Command: "week", Description: "Last 7 days summary"},
		{Command: "export", Description: "Download the full log as an Excel file"},
		{Command: "testai", Description: "Try the classifier on a message (admin)"},
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		log.Error("Failed to set bot commands", "error", err)
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	log.Debug("Bot command menu set", "count", len(commands))
	return nil
}

// WebhookPath returns the path the Telegram webhook is mounted on. The token
// segment keeps the endpoint unguessable.
func WebhookPath(token string) string {
	return "/telegram-webhook/" + token
}

// ConfigureWebhook points Telegram at the public webhook endpoint, dropping
// any previous webhook and its pending updates first.
func ConfigureWebhook(ctx context.Context, b *bot.Bot, logger *slog.Logger, baseURL, token string) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete previous webhook: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + WebhookPath(token)
	ok, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("telegram rejected webhook url %s", url)
	}

	log.Info("Webhook configured", "url", url)
	return nil
}

// RemoveWebhook deletes any registered webhook so long polling can take over.
func RemoveWebhook(ctx context.Context, b *bot.Bot, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	log.Debug("Webhook removed, polling mode active")
	return nil
}
