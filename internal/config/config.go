package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderGemini LLMProvider = "gemini"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID      int64   `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMFallbacks     []string      `env:"LLM_FALLBACKS" envSeparator:"," envDefault:"gemini"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	RetryAttempts    int           `env:"MODEL_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBackoff     time.Duration `env:"MODEL_RETRY_BACKOFF" envDefault:"2s"`
	QuotaPerMinute   int           `env:"QUOTA_PER_MINUTE" envDefault:"30"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Google Workspace
	GoogleCredentialsJSON     string `env:"GOOGLE_CREDENTIALS_JSON"`
	GoogleCredentialsJSONPath string `env:"GOOGLE_CREDENTIALS_JSON_PATH"`
	SheetID                   string `env:"SHEET_ID,required"`
	StockTab                  string `env:"STOCK_TAB" envDefault:"Stock"`
	LeadsTab                  string `env:"LEADS_TAB" envDefault:"Leeds"`
	DriveParentFolderID       string `env:"DRIVE_PARENT_FOLDER_ID"`
	CalendarID                string `env:"CALENDAR_ID" envDefault:"primary"`
	TimeZone                  string `env:"TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"`
	DigestCron                string `env:"DIGEST_CRON" envDefault:"0 9 * * *"`

	// Prompt context bounds
	SystemPromptPath   string `env:"SYSTEM_PROMPT_PATH"`
	HistoryWindow      int    `env:"HISTORY_WINDOW" envDefault:"6"`
	SnapshotMaxRecords int    `env:"SNAPSHOT_MAX_RECORDS" envDefault:"15"`
	SnapshotEmptyStop  int    `env:"SNAPSHOT_EMPTY_STOP" envDefault:"3"`

	// Storage
	LogFilePath       string `env:"LOG_FILE_PATH" envDefault:"logs/turns.jsonl"`
	AllowlistFilePath string `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`
	PendingFilePath   string `env:"PENDING_FILE_PATH" envDefault:"data/pending.json"`
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GoogleCredentials returns the service-account JSON, read either directly
// from the environment or from the file it points to.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	if c.GoogleCredentialsJSONPath == "" {
		return nil, fmt.Errorf("either GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_JSON_PATH is required")
	}
	data, err := os.ReadFile(c.GoogleCredentialsJSONPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return data, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("⚠️ unknown timezone %q, using UTC: %v", c.TimeZone, err)
		return time.UTC
	}
	return loc
}
