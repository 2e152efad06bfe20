// Package bot implements the core bot functionality, lifecycle management,
// and component orchestration for the NanaBot Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/dispatch"
	"github.com/edgard/nanabot/internal/gemini"
	"github.com/edgard/nanabot/internal/ratelimit"
	"github.com/edgard/nanabot/internal/server"
	"github.com/edgard/nanabot/internal/sheets"
	"github.com/edgard/nanabot/internal/telegram"
)

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger       *slog.Logger
	cfg          *config.Config
	store        sheets.Store
	geminiClient gemini.Client
	tgBot        *tgbot.Bot
	scheduler    *Scheduler
	pool         *dispatch.Pool
	limiter      *ratelimit.Limiter
	server       *server.Server
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	store sheets.Store,
	geminiClient gemini.Client,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	pool *dispatch.Pool,
	limiter *ratelimit.Limiter,
	srv *server.Server,
) *Bot {
	return &Bot{
		logger:       logger.With("component", "bot_orchestrator"),
		cfg:          cfg,
		store:        store,
		geminiClient: geminiClient,
		tgBot:        tgBot,
		scheduler:    scheduler,
		pool:         pool,
		limiter:      limiter,
		server:       srv,
	}
}

// Run starts the bot and all its components, handling graceful shutdown on
// context cancellation. It returns an error if any component fails during
// startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.cfg.Telegram.WebhookURL != "" {
			if err := telegram.ConfigureWebhook(gCtx, b.tgBot, b.logger, b.cfg.Telegram.WebhookURL, b.cfg.Telegram.Token); err != nil {
				return fmt.Errorf("failed to configure webhook: %w", err)
			}
			b.logger.Info("Starting Telegram bot in webhook mode...")
			b.tgBot.StartWebhook(gCtx)
		} else {
			// A stale webhook blocks long polling, so always clear it.
			if err := telegram.RemoveWebhook(gCtx, b.tgBot, b.logger); err != nil {
				return fmt.Errorf("failed to remove webhook: %w", err)
			}
			b.logger.Info("Starting Telegram bot in polling mode...")
			b.tgBot.Start(gCtx)
		}
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")

			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.server.Run(gCtx); err != nil {
			b.logger.Error("HTTP server failed", "error", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	g.Go(func() error {
		return b.pool.Run(gCtx)
	})

	g.Go(func() error {
		// The rate limiter is hit before authorization, so its identity map
		// collects arbitrary sender ids. Reclaim idle ones periodically.
		ticker := time.NewTicker(b.cfg.RateWindow())
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				b.limiter.Prune()
			}
		}
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
