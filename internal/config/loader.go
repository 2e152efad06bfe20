package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in order of precedence:
// 1. NANABOT_* environment variables
// 2. the YAML file at path
// 3. built-in defaults
// A missing config file is not an error; defaults and environment variables
// are enough to run.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("NANABOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		// Config file not found is okay, we'll use defaults and env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values for all optional configuration keys.
func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", DefaultTimezone)

	// Logger defaults
	v.SetDefault("logger.level", DefaultLoggerLevel)
	v.SetDefault("logger.json", DefaultLoggerJSON)

	// Gemini defaults
	v.SetDefault("gemini.model_name", DefaultGeminiModelName)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.top_p", DefaultGeminiTopP)
	v.SetDefault("gemini.max_output_tokens", DefaultGeminiMaxOutputTokens)
	v.SetDefault("gemini.max_attempts", DefaultGeminiMaxAttempts)
	v.SetDefault("gemini.answer_attempts", DefaultGeminiAnswerAttempts)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelaySeconds)

	// Storage defaults
	v.SetDefault("storage.backend", DefaultStorageBackend)
	v.SetDefault("storage.path", DefaultStoragePath)

	// Limits defaults
	v.SetDefault("limits.rate_requests", DefaultRateRequests)
	v.SetDefault("limits.rate_window_seconds", DefaultRateWindowSeconds)
	v.SetDefault("limits.confidence_threshold", DefaultConfidenceThreshold)

	// Clarification cache defaults
	v.SetDefault("clarify.capacity", DefaultClarifyCapacity)
	v.SetDefault("clarify.ttl_minutes", DefaultClarifyTTLMinutes)

	// Dispatch pool defaults
	v.SetDefault("dispatch.workers", DefaultDispatchWorkers)
	v.SetDefault("dispatch.queue_size", DefaultDispatchQueueSize)

	// Server defaults
	v.SetDefault("server.listen_addr", DefaultServerListenAddr)

	// Scheduler defaults
	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)

	// Message defaults
	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.admin_only", DefaultMessages.AdminOnly)
	v.SetDefault("messages.rate_limited", DefaultMessages.RateLimited)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.queue_full", DefaultMessages.QueueFull)
	v.SetDefault("messages.clarify_prompt", DefaultMessages.ClarifyPrompt)
	v.SetDefault("messages.clarify_expired", DefaultMessages.ClarifyExpired)
	v.SetDefault("messages.testai_usage", DefaultMessages.TestAIUsage)
	v.SetDefault("messages.export_caption", DefaultMessages.ExportCaption)
	v.SetDefault("messages.admin_alert_header", DefaultMessages.AdminAlertHeader)
}
