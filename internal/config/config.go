// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	WebhookSecret string

	GitHubToken             string
	GitHubAppID             int64
	GitHubAppInstallationID int64
	GitHubAppPrivateKeyFile string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	AITimeout        time.Duration

	GuidelinesFile string
	LogLevel       slog.Level
}

// UseAppAuth returns true when GitHub App credentials are configured instead
// of a personal access token.
func (c *Config) UseAppAuth() bool {
	return c.GitHubAppID != 0
}

// Load reads configuration from environment variables and returns a validated Config.
// HOOKBILL_WEBHOOK_SECRET and HOOKBILL_ANTHROPIC_API_KEY are required, as is exactly
// one GitHub credential mode: HOOKBILL_GITHUB_TOKEN, or the App triple
// HOOKBILL_GITHUB_APP_ID + HOOKBILL_GITHUB_APP_INSTALLATION_ID +
// HOOKBILL_GITHUB_APP_PRIVATE_KEY_FILE.
// Optional variables with defaults: HOOKBILL_LISTEN_ADDR (:8080),
// HOOKBILL_ANTHROPIC_BASE_URL (https://api.anthropic.com),
// HOOKBILL_ANTHROPIC_MODEL (claude-3-7-sonnet-20250219), HOOKBILL_AI_TIMEOUT (90s),
// HOOKBILL_GUIDELINES_FILE (embedded defaults), HOOKBILL_LOG_LEVEL (info).
func Load() (*Config, error) {
	secret := os.Getenv("HOOKBILL_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("HOOKBILL_WEBHOOK_SECRET is required")
	}

	token := os.Getenv("HOOKBILL_GITHUB_TOKEN")

	var appID, installationID int64
	if v, ok := os.LookupEnv("HOOKBILL_GITHUB_APP_ID"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("HOOKBILL_GITHUB_APP_ID has invalid value %q: %w", v, err)
		}
		appID = parsed
	}
	if v, ok := os.LookupEnv("HOOKBILL_GITHUB_APP_INSTALLATION_ID"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("HOOKBILL_GITHUB_APP_INSTALLATION_ID has invalid value %q: %w", v, err)
		}
		installationID = parsed
	}
	keyFile := os.Getenv("HOOKBILL_GITHUB_APP_PRIVATE_KEY_FILE")

	switch {
	case token == "" && appID == 0:
		return nil, fmt.Errorf("GitHub credentials are required: set HOOKBILL_GITHUB_TOKEN or the HOOKBILL_GITHUB_APP_* variables")
	case token != "" && appID != 0:
		return nil, fmt.Errorf("HOOKBILL_GITHUB_TOKEN and HOOKBILL_GITHUB_APP_ID are mutually exclusive")
	case appID != 0 && (installationID == 0 || keyFile == ""):
		return nil, fmt.Errorf("GitHub App auth requires HOOKBILL_GITHUB_APP_ID, HOOKBILL_GITHUB_APP_INSTALLATION_ID and HOOKBILL_GITHUB_APP_PRIVATE_KEY_FILE")
	}

	apiKey := os.Getenv("HOOKBILL_ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("HOOKBILL_ANTHROPIC_API_KEY is required")
	}

	baseURL := "https://api.anthropic.com"
	if v, ok := os.LookupEnv("HOOKBILL_ANTHROPIC_BASE_URL"); ok {
		baseURL = v
	}

	model := "claude-3-7-sonnet-20250219"
	if v, ok := os.LookupEnv("HOOKBILL_ANTHROPIC_MODEL"); ok {
		model = v
	}

	aiTimeout := 90 * time.Second
	if v, ok := os.LookupEnv("HOOKBILL_AI_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HOOKBILL_AI_TIMEOUT has invalid duration %q: %w", v, err)
		}
		aiTimeout = parsed
	}

	listenAddr := ":8080"
	if v, ok := os.LookupEnv("HOOKBILL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("HOOKBILL_LOG_LEVEL"); ok {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("HOOKBILL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		ListenAddr:              listenAddr,
		WebhookSecret:           secret,
		GitHubToken:             token,
		GitHubAppID:             appID,
		GitHubAppInstallationID: installationID,
		GitHubAppPrivateKeyFile: keyFile,
		AnthropicAPIKey:         apiKey,
		AnthropicBaseURL:        baseURL,
		AnthropicModel:          model,
		AITimeout:               aiTimeout,
		GuidelinesFile:          os.Getenv("HOOKBILL_GUIDELINES_FILE"),
		LogLevel:                logLevel,
	}, nil
}
