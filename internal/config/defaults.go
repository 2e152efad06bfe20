package config

// Default values for configuration
const (
	// Timezone default; "Local" follows the host clock
	DefaultTimezone = "Local"

	// Logger defaults
	DefaultLoggerLevel = "info"
	DefaultLoggerJSON  = false

	// Gemini defaults
	DefaultGeminiModelName         = "gemini-2.0-flash"
	DefaultGeminiTemperature       = float32(0.1)
	DefaultGeminiTopP              = float32(0.8)
	DefaultGeminiMaxOutputTokens   = int32(1024)
	DefaultGeminiMaxAttempts       = 3 // Classification attempts before falling back
	DefaultGeminiAnswerAttempts    = 2 // Answer generation attempts before deterministic fallback
	DefaultGeminiRetryDelaySeconds = 1

	// Storage defaults
	DefaultStorageBackend = "xlsx"
	DefaultStoragePath    = "nanabot.xlsx"

	// Rate limiting and confidence gate defaults
	DefaultRateRequests        = 10
	DefaultRateWindowSeconds   = 60
	DefaultConfidenceThreshold = 0.6

	// Clarification ticket cache defaults
	DefaultClarifyCapacity   = 128
	DefaultClarifyTTLMinutes = 15

	// Dispatch pool defaults
	DefaultDispatchWorkers   = 4
	DefaultDispatchQueueSize = 16

	// HTTP server defaults
	DefaultServerListenAddr = ":8080"

	// Scheduler defaults (six-field crontab, seconds first)
	DefaultDailyReportSchedule  = "0 0 8 * * *"
	DefaultWeeklyReportSchedule = "0 0 8 * * 1"
)

// Default user-facing messages
var DefaultMessages = MessagesConfig{
	Welcome: `👋 Hi %s! Welcome to NanaBot, your baby care log.

🤖 I understand free text and file it for you:
🍼 food and drink (amount, type, method)
😴 sleep (start and end times)
😢 crying (duration and intensity)
📝 behavior (mood and activities)

Examples:
• drank 120 ml formula from the bottle
• tried banana, about 3 teaspoons
• slept 13:10-14:30, lovely nap
• cried hard for 10 minutes after the bath
• lots of smiles and giggles today

Commands:
/today - today's summary
/week - weekly summary
/export - download the log
/help - show this message

Just write what happened! 😊`,
	Help: `🤖 Send me a plain message and I'll log it:
🍼 food, 😴 sleep, 😢 crying, 📝 behavior

You can also ask questions about the log
("how did she sleep this week?").

Commands:
/today - today's summary
/week - weekly summary
/export - download the log as a spreadsheet`,
	NotAuthorized:    "⛔ You're not authorized to use this bot.\nYour chat ID: %s\nAsk the admin to add you to the Users sheet.",
	AdminOnly:        "⛔ This command is admin only.",
	RateLimited:      "⏰ Too many requests. Try again in a minute.",
	GeneralError:     "❌ Something went wrong, your message was not saved. Please try again.",
	QueueFull:        "⏳ Still working on your previous messages, give me a moment.",
	ClarifyPrompt:    "🤔 I'm not sure what you meant.\n\n📝 You wrote: %s\n🎯 My guess: %s (%.0f%% sure)\n\nPick a category so I can file it right:",
	ClarifyExpired:   "🤷 Couldn't find that message anymore. Please send it again.",
	TestAIUsage:      "💡 Usage: /testai <text to classify>",
	ExportCaption:    "📊 Your baby care log",
	AdminAlertHeader: "🚨 Admin alert:",
}

// DefaultSchedulerTasks enables the report tasks with their standard schedules.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"daily_report":  {Enabled: true, Schedule: DefaultDailyReportSchedule},
	"weekly_report": {Enabled: true, Schedule: DefaultWeeklyReportSchedule},
}
