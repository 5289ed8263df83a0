package config

import (
	"log/slog"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm" validate:"required"`
	Auth   AuthConfig   `mapstructure:"auth" validate:"required"`
	Run    RunConfig    `mapstructure:"run" validate:"required"`
	Prompt PromptConfig `mapstructure:"prompt" validate:"required"`
	Log    LogConfig    `mapstructure:"log" validate:"required"`
}

// LLMConfig contains the completion service settings.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url" validate:"required,url"`
	ModelName   string  `mapstructure:"model" validate:"required"`
	Interface   string  `mapstructure:"interface" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `mapstructure:"top_p" validate:"gt=0,lte=1"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gte=0"`
	RetryJitter    time.Duration `mapstructure:"retry_jitter" validate:"gte=0"`

	// RequestTimeout bounds a single HTTP attempt. Zero disables it.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// AuthConfig contains the credentials exchanged for a session token.
type AuthConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

// LogValue keeps the password out of structured logs.
func (a AuthConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", a.Username),
		slog.Bool("password_present", a.Password != ""),
	)
}

// RunConfig contains the batch run settings.
type RunConfig struct {
	QuestionPath string `mapstructure:"question_path" validate:"required"`
	ResultDir    string `mapstructure:"result_dir" validate:"required"`
	WorkerCount  int    `mapstructure:"worker_count" validate:"gt=0"`
	Generations  int    `mapstructure:"generations" validate:"gte=1"`
	Progress     string `mapstructure:"progress" validate:"required,oneof=bar log none"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

// PromptConfig contains the prompt builder settings.
type PromptConfig struct {
	CatalogPath string `mapstructure:"catalog_path" validate:"required"`
	ShotNumber  int    `mapstructure:"shot_number" validate:"gte=0"`
	ShotType    string `mapstructure:"shot_type" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}
