// Package config manages application configuration from defaults, a YAML
// config file, and NANABOT_* environment variables.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config holds the full application configuration. Values can be set through
// config.yaml or environment variables prefixed with NANABOT_
// (e.g., NANABOT_TELEGRAM_TOKEN).
type Config struct {
	Timezone  string          `mapstructure:"timezone"  validate:"required"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Clarify   ClarifyConfig   `mapstructure:"clarify"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram connection settings. BotInfo is populated at
// startup from GetMe and is not read from the config file.
type TelegramConfig struct {
	Token      string `mapstructure:"token"       validate:"required"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`

	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig holds settings for the Gemini AI client.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"             validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	TopP              float32 `mapstructure:"top_p"               validate:"gte=0,lte=1"`
	MaxOutputTokens   int32   `mapstructure:"max_output_tokens"   validate:"gt=0"`
	MaxAttempts       int     `mapstructure:"max_attempts"        validate:"min=1"`
	AnswerAttempts    int     `mapstructure:"answer_attempts"     validate:"min=1"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0"`
}

// StorageConfig selects and configures the spreadsheet backend.
// Backend "google" writes to a Google Sheets spreadsheet, "xlsx" to a local
// workbook file.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"          validate:"required,oneof=google xlsx"`
	CredentialsFile string `mapstructure:"credentials_file"`
	SheetID         string `mapstructure:"sheet_id"`
	Path            string `mapstructure:"path"`
}

// LimitsConfig holds per-user rate limiting and the confidence gate threshold.
type LimitsConfig struct {
	RateRequests        int     `mapstructure:"rate_requests"        validate:"min=1"`
	RateWindowSeconds   int     `mapstructure:"rate_window_seconds"  validate:"min=1"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"gte=0,lte=1"`
}

// ClarifyConfig bounds the in-process clarification ticket cache.
type ClarifyConfig struct {
	Capacity   int `mapstructure:"capacity"    validate:"min=1"`
	TTLMinutes int `mapstructure:"ttl_minutes" validate:"min=1"`
}

// DispatchConfig bounds the async message-processing pool.
type DispatchConfig struct {
	Workers   int `mapstructure:"workers"    validate:"min=1"`
	QueueSize int `mapstructure:"queue_size" validate:"min=1"`
}

// ServerConfig holds the HTTP server settings (health endpoint and, in
// webhook mode, the Telegram webhook route).
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`
}

// SchedulerConfig holds scheduled task definitions keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task and sets its cron schedule
// (six-field crontab, seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds user-facing message texts. All are plain strings;
// some contain fmt verbs filled in by the handlers.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"            validate:"required"`
	Help             string `mapstructure:"help"               validate:"required"`
	NotAuthorized    string `mapstructure:"not_authorized"     validate:"required"`
	AdminOnly        string `mapstructure:"admin_only"         validate:"required"`
	RateLimited      string `mapstructure:"rate_limited"       validate:"required"`
	GeneralError     string `mapstructure:"general_error"      validate:"required"`
	QueueFull        string `mapstructure:"queue_full"         validate:"required"`
	ClarifyPrompt    string `mapstructure:"clarify_prompt"     validate:"required"`
	ClarifyExpired   string `mapstructure:"clarify_expired"    validate:"required"`
	TestAIUsage      string `mapstructure:"testai_usage"       validate:"required"`
	ExportCaption    string `mapstructure:"export_caption"     validate:"required"`
	AdminAlertHeader string `mapstructure:"admin_alert_header" validate:"required"`
}

// Location resolves the configured timezone. Validation guarantees the name
// is loadable, so callers after LoadConfig may ignore the error.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RateWindow returns the rate limiter window as a duration.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.Limits.RateWindowSeconds) * time.Second
}

// ClarifyTTL returns the clarification ticket lifetime as a duration.
func (c *Config) ClarifyTTL() time.Duration {
	return time.Duration(c.Clarify.TTLMinutes) * time.Minute
}
