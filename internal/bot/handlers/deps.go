package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/nanabot/internal/clarify"
	"github.com/edgard/nanabot/internal/config"
	"github.com/edgard/nanabot/internal/dispatch"
	"github.com/edgard/nanabot/internal/gemini"
	"github.com/edgard/nanabot/internal/qa"
	"github.com/edgard/nanabot/internal/ratelimit"
	"github.com/edgard/nanabot/internal/sheets"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   sheets.Store
	AI      gemini.Client
	QA      *qa.Service
	Limiter *ratelimit.Limiter
	Tickets *clarify.Store
	Pool    *dispatch.Pool
}

// localNow returns the current time in the configured timezone. Config
// validation guarantees the timezone loads; the fallback is never hit after
// a successful startup.
func (d HandlerDeps) localNow() time.Time {
	loc, err := d.Config.Location()
	if err != nil {
		return time.Now()
	}
	return time.Now().In(loc)
}
