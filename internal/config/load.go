package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "PUTERBATCH"

// envFallbacks lists extra environment variables consulted for a key when
// the prefixed one is unset.
var envFallbacks = map[string][]string{
	"auth.username": {"PUTER_USERNAME"},
	"auth.password": {"PUTER_PASSWORD"},
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"model":            "llm.model",
	"base-url":         "llm.base_url",
	"interface":        "llm.interface",
	"temperature":      "llm.temperature",
	"top-p":            "llm.top_p",
	"max-retries":      "llm.max_retries",
	"retry-base-delay": "llm.retry_base_delay",
	"retry-jitter":     "llm.retry_jitter",
	"request-timeout":  "llm.request_timeout",
	"username":         "auth.username",
	"password":         "auth.password",
	"question":         "run.question_path",
	"result-dir":       "run.result_dir",
	"workers":          "run.worker_count",
	"generations":      "run.generations",
	"progress":         "run.progress",
	"metrics-file":     "run.metrics_file",
	"shots":            "prompt.catalog_path",
	"shot-number":      "prompt.shot_number",
	"shot-type":        "prompt.shot_type",
	"log-level":        "log.level",
}

// Option customizes the viper instance used by Load.
type Option func(v *viper.Viper) error

// WithConfigFile reads the given file (YAML, TOML or JSON by extension).
// An empty path is ignored.
func WithConfigFile(path string) Option {
	return func(v *viper.Viper) error {
		if path == "" {
			return nil
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithFlags binds the flags named in FlagKeys. Flags that were not set on
// the command line do not override other sources.
func WithFlags(flags *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		for name, key := range FlagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
		return nil
	}
}

// Load configuration from defaults, config file, environment variables and
// flags. Flags take precedence over environment variables, which take
// precedence over the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	for _, key := range FlagKeys {
		envNames := append([]string{envName(key)}, envFallbacks[key]...)
		if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.base_url", "https://api.puter.com")
	v.SetDefault("llm.interface", "puter-chat-completion")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.max_retries", 5)
	v.SetDefault("llm.retry_base_delay", 10*time.Second)
	v.SetDefault("llm.retry_jitter", 10*time.Second)
	v.SetDefault("llm.request_timeout", time.Duration(0))

	v.SetDefault("run.question_path", "./dataset/question.jsonl")
	v.SetDefault("run.worker_count", 5)
	v.SetDefault("run.generations", 1)
	v.SetDefault("run.progress", "bar")

	v.SetDefault("prompt.catalog_path", "./dataset/shots.yaml")
	v.SetDefault("prompt.shot_number", 0)
	v.SetDefault("prompt.shot_type", "example")

	v.SetDefault("log.level", "info")
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
