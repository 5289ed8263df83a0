package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for a test and restores them afterwards.
// An empty value unsets the variable for the duration of the test.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()

	for name, value := range envVars {
		name := name
		original, present := os.LookupEnv(name)
		if value == "" {
			require.NoError(t, os.Unsetenv(name), "Failed to unset environment variable %s", name)
		} else {
			require.NoError(t, os.Setenv(name, value), "Failed to set environment variable %s", name)
		}

		t.Cleanup(func() {
			if present {
				_ = os.Setenv(name, original)
			} else {
				_ = os.Unsetenv(name)
			}
		})
	}
}

// requiredEnv returns the minimal environment for a valid configuration.
func requiredEnv() map[string]string {
	return map[string]string{
		"PUTERBATCH_LLM_MODEL":      "gpt-4o-mini",
		"PUTERBATCH_RUN_RESULT_DIR": "/tmp/results",
		"PUTERBATCH_AUTH_USERNAME":  "alice",
		"PUTERBATCH_AUTH_PASSWORD":  "s3cret",
		"PUTER_USERNAME":            "",
		"PUTER_PASSWORD":            "",
	}
}

// TestLoadDefaults verifies that Load applies the documented defaults.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, requiredEnv())

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, "https://api.puter.com", cfg.LLM.BaseURL)
	assert.Equal(t, "puter-chat-completion", cfg.LLM.Interface)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.LLM.TopP, 1e-9)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.LLM.RetryBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.LLM.RetryJitter)
	assert.Zero(t, cfg.LLM.RequestTimeout)
	assert.Equal(t, 5, cfg.Run.WorkerCount)
	assert.Equal(t, 1, cfg.Run.Generations)
	assert.Equal(t, "./dataset/question.jsonl", cfg.Run.QuestionPath)
	assert.Equal(t, "bar", cfg.Run.Progress)
	assert.Equal(t, "example", cfg.Prompt.ShotType)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestLoadFromEnv verifies that Load reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	env := requiredEnv()
	env["PUTERBATCH_LLM_TEMPERATURE"] = "0.7"
	env["PUTERBATCH_LLM_RETRY_BASE_DELAY"] = "3s"
	env["PUTERBATCH_RUN_WORKER_COUNT"] = "12"
	env["PUTERBATCH_LOG_LEVEL"] = "debug"
	setupEnv(t, env)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ModelName)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.LLM.RetryBaseDelay)
	assert.Equal(t, 12, cfg.Run.WorkerCount)
	assert.Equal(t, "/tmp/results", cfg.Run.ResultDir)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.Equal(t, "s3cret", cfg.Auth.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadCredentialFallback verifies the unprefixed credential variables.
func TestLoadCredentialFallback(t *testing.T) {
	env := requiredEnv()
	env["PUTERBATCH_AUTH_USERNAME"] = ""
	env["PUTERBATCH_AUTH_PASSWORD"] = ""
	env["PUTER_USERNAME"] = "bob"
	env["PUTER_PASSWORD"] = "hunter2"
	setupEnv(t, env)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Auth.Username)
	assert.Equal(t, "hunter2", cfg.Auth.Password)
}

// TestLoadFlagsOverrideEnv verifies flag precedence.
func TestLoadFlagsOverrideEnv(t *testing.T) {
	env := requiredEnv()
	env["PUTERBATCH_RUN_WORKER_COUNT"] = "12"
	setupEnv(t, env)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 5, "")
	flags.String("model", "", "")
	require.NoError(t, flags.Parse([]string{"--workers=3"}))

	cfg, err := Load(WithFlags(flags))

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Run.WorkerCount, "set flag wins over env")
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ModelName, "unset flag does not mask env")
}

// TestLoadConfigFile verifies that values are read from a YAML file.
func TestLoadConfigFile(t *testing.T) {
	setupEnv(t, requiredEnv())

	path := filepath.Join(t.TempDir(), "puterbatch.yaml")
	content := "llm:\n  top_p: 0.5\nprompt:\n  shot_number: 3\n  shot_type: api\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(WithConfigFile(path))

	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.LLM.TopP, 1e-9)
	assert.Equal(t, 3, cfg.Prompt.ShotNumber)
	assert.Equal(t, "api", cfg.Prompt.ShotType)

	_, err = Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

// TestLoadValidationErrors verifies that Load validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name     string
		override map[string]string
	}{
		{
			name:     "Missing model",
			override: map[string]string{"PUTERBATCH_LLM_MODEL": ""},
		},
		{
			name: "Missing credentials",
			override: map[string]string{
				"PUTERBATCH_AUTH_USERNAME": "",
				"PUTERBATCH_AUTH_PASSWORD": "",
			},
		},
		{
			name:     "Zero workers",
			override: map[string]string{"PUTERBATCH_RUN_WORKER_COUNT": "0"},
		},
		{
			name:     "Top p out of range",
			override: map[string]string{"PUTERBATCH_LLM_TOP_P": "1.5"},
		},
		{
			name:     "Invalid log level",
			override: map[string]string{"PUTERBATCH_LOG_LEVEL": "verbose"},
		},
		{
			name:     "Invalid progress mode",
			override: map[string]string{"PUTERBATCH_RUN_PROGRESS": "fancy"},
		},
		{
			name:     "Invalid base url",
			override: map[string]string{"PUTERBATCH_LLM_BASE_URL": "not a url"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := requiredEnv()
			for k, v := range tc.override {
				env[k] = v
			}
			setupEnv(t, env)

			cfg, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
