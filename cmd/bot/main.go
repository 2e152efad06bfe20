// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/nanabot/internal/bot"
	"github.com/edgard/nanabot/internal/bot/handlers"
	"github.com/edgard/nanabot/internal/bot/tasks"
	"github.com/edgard/nanabot/internal/clarify"
	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/dispatch"
	"github.com/edgard/nanabot/internal/gemini"
	"github.com/edgard/nanabot/internal/logger"
	"github.com/edgard/nanabot/internal/qa"
	"github.com/edgard/nanabot/internal/ratelimit"
	"github.com/edgard/nanabot/internal/server"
	"github.com/edgard/nanabot/internal/sheets"
	"github.com/edgard/nanabot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// store, ai client, bot, scheduler, http server), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, err := sheets.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize spreadsheet store", "backend", cfg.Storage.Backend, "error", err)
		return 1
	}

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}
	// Not fatal: classification falls back on its own, but a bad API key
	// should be visible at boot rather than on the first message.
	if err := gemClient.Healthcheck(ctx); err != nil {
		log.Warn("Gemini healthcheck failed, continuing anyway", "error", err)
	}

	limiter := ratelimit.NewLimiter(cfg.Limits.RateRequests, cfg.RateWindow())
	tickets := clarify.NewStore(cfg.Clarify.Capacity, cfg.ClarifyTTL(), log)
	pool := dispatch.NewPool(int64(cfg.Dispatch.Workers), cfg.Dispatch.QueueSize, log)

	qaSvc, err := qa.NewService(cfg, store, gemClient, log)
	if err != nil {
		log.Error("Failed to initialize QA service", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		AI:      gemClient,
		QA:      qaSvc,
		Limiter: limiter,
		Tickets: tickets,
		Pool:    pool,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetBotCommands(ctx, tg, log); err != nil {
		log.Error("Failed to set bot command menu", "error", err)
		return 1
	}

	var webhookPath string
	var webhookHandler http.HandlerFunc
	if cfg.Telegram.WebhookURL != "" {
		webhookPath = telegram.WebhookPath(cfg.Telegram.Token)
		webhookHandler = tg.WebhookHandler()
	}
	srv, err := server.New(cfg, store, log, webhookPath, webhookHandler)
	if err != nil {
		log.Error("Failed to initialize HTTP server", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
		QA:     qaSvc,
		TgBot:  tg,
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, store, gemClient, tg, sched, pool, limiter, srv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
