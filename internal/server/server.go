// Package server exposes the bot's HTTP surface: a health endpoint, a small
// status page, and the Telegram webhook route when webhook mode is enabled.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/edgard/nanabot/internal/config"
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Pinger reports whether the backing spreadsheet is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves health checks and, in webhook mode, routes Telegram updates
// to the bot's webhook handler.
type Server struct {
	logger  *slog.Logger
	store   Pinger
	addr    string
	botName string
	loc     *time.Location

	webhookPath    string
	webhookHandler http.HandlerFunc

	now func() time.Time
}

// New creates the HTTP server. webhookPath and webhookHandler are empty in
// polling mode; the webhook route is then not mounted.
func New(cfg *config.Config, store Pinger, logger *slog.Logger, webhookPath string, webhookHandler http.HandlerFunc) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	botName := "nanabot"
	if cfg.Telegram.BotInfo != nil && cfg.Telegram.BotInfo.Username != "" {
		botName = cfg.Telegram.BotInfo.Username
	}

	return &Server{
		logger:         logger.With("component", "http_server"),
		store:          store,
		addr:           cfg.Server.ListenAddr,
		botName:        botName,
		loc:            loc,
		webhookPath:    webhookPath,
		webhookHandler: webhookHandler,
		now:            time.Now,
	}, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHome)
	if s.webhookPath != "" && s.webhookHandler != nil {
		mux.HandleFunc("POST "+s.webhookPath, s.webhookHandler)
	}
	return mux
}

type healthResponse struct {
	Status    string `json:"status"`
	Bot       string `json:"bot"`
	Storage   string `json:"storage"`
	Timestamp string `json:"timestamp"`
}

// handleHealth reports process and storage health. An unreachable store
// degrades the status but keeps the endpoint at 200: the bot itself is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, storage := "healthy", "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "Storage ping failed during health check", "error", err)
		status, storage = "degraded", "unreachable"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:    status,
		Bot:       s.botName,
		Storage:   storage,
		Timestamp: s.now().In(s.loc).Format(time.RFC3339),
	}); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to write health response", "error", err)
	}
}

const homePage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>nanabot</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
            color: white;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
        }
        .container {
            text-align: center;
            padding: 2rem;
            background: rgba(255,255,255,0.1);
            border-radius: 20px;
        }
        h1 { font-size: 3rem; margin-bottom: 1rem; }
        p { font-size: 1.2rem; }
        .status {
            background: #4CAF50;
            display: inline-block;
            padding: 10px 20px;
            border-radius: 20px;
            margin-top: 1rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>🍼 %s</h1>
        <p>Infant care logging over Telegram</p>
        <div class="status">✅ Server is running</div>
    </div>
</body>
</html>
`

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, homePage, s.botName)
}

// Run starts the listener and blocks until ctx is cancelled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr, "webhook_mounted", s.webhookPath != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}
