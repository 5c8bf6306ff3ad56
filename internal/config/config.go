package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/wellness.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Reminder scheduling knobs.
	SnoozeDelay     time.Duration `envconfig:"SNOOZE_DELAY" default:"15m"`
	MaxSnoozes      int           `envconfig:"MAX_SNOOZES" default:"2"`
	JanitorInterval time.Duration `envconfig:"JANITOR_INTERVAL" default:"6h"`

	// Weekly report AI insights. Provider "none" disables them.
	LLMProvider string `envconfig:"LLM_PROVIDER" default:"none"` // anthropic|openai|none
	LLMAPIKey   string `envconfig:"LLM_API_KEY"`
	LLMModel    string `envconfig:"LLM_MODEL"`
	LLMBaseURL  string `envconfig:"LLM_BASE_URL"`
}

// Load reads an optional .env file, then environment variables, into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
