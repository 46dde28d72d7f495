// Package config provides configuration loading and validation for the agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings holds the immutable application configuration. Build one at
// startup with Load and pass it down; nothing in this package caches state.
type Settings struct {
	// LLM (Gemini)
	GeminiAPIKey   string
	LLMModel       string
	FallbackModels []string
	LLMMaxTokens   int

	// Telegram
	TelegramToken         string
	TelegramWebhookSecret string
	TelegramWebhookPath   string
	WebhookHost           string
	WebhookPort           int
	EnableDriveUpload     bool
	EnableCalendarEvents  bool

	// Google Cloud
	GoogleCredentialsPath string

	// Cost
	MaxCostPerJob float64

	// Resume mutation policy. Zero means unbounded.
	MaxMutations int

	// Compilation
	CompileTimeout time.Duration

	// Paths
	DBPath         string
	ProfilePath    string
	BulletBankPath string
	ResumesDir     string
	RunsDir        string

	// Logging
	LogLevel   string
	LogConsole bool
}

// Load builds Settings from the environment, applying defaults relative to
// the given root directory.
func Load(root string) Settings {
	if root == "" {
		root, _ = os.Getwd()
	}

	return Settings{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		LLMModel:       envStr("LLM_MODEL", "gemini-2.5-flash"),
		FallbackModels: splitModels(os.Getenv("LLM_FALLBACK_MODELS")),
		LLMMaxTokens:   envInt("LLM_MAX_TOKENS", 4096),

		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		TelegramWebhookPath:   envStr("TELEGRAM_WEBHOOK_PATH", "/telegram/webhook"),
		WebhookHost:           envStr("WEBHOOK_HOST", "0.0.0.0"),
		WebhookPort:           envInt("WEBHOOK_PORT", 8000),
		EnableDriveUpload:     envBool("ENABLE_DRIVE_UPLOAD", false),
		EnableCalendarEvents:  envBool("ENABLE_CALENDAR_EVENTS", false),

		GoogleCredentialsPath: envStr("GOOGLE_CREDENTIALS_PATH", filepath.Join(root, "credentials", "google_service_account.json")),

		MaxCostPerJob: envFloat("MAX_COST_PER_JOB", 0.15),
		MaxMutations:  envInt("RESUME_MAX_MUTATIONS", 0),

		CompileTimeout: time.Duration(envInt("COMPILE_TIMEOUT_SECONDS", 30)) * time.Second,

		DBPath:         envStr("DB_PATH", filepath.Join(root, "data", "inbox_agent.db")),
		ProfilePath:    envStr("PROFILE_PATH", filepath.Join(root, "profile", "profile.json")),
		BulletBankPath: envStr("BULLET_BANK_PATH", filepath.Join(root, "profile", "bullet_bank.json")),
		ResumesDir:     envStr("RESUMES_DIR", filepath.Join(root, "resumes")),
		RunsDir:        envStr("RUNS_DIR", filepath.Join(root, "runs")),

		LogLevel:   envStr("LOG_LEVEL", "info"),
		LogConsole: envBool("LOG_CONSOLE", true),
	}
}

// Validate checks that the configuration has valid values.
func (s Settings) Validate() error {
	if s.WebhookPort <= 0 || s.WebhookPort > 65535 {
		return fmt.Errorf("config error: webhook port out of range: %d", s.WebhookPort)
	}
	if s.MaxCostPerJob < 0 {
		return fmt.Errorf("config error: max cost per job must be non-negative")
	}
	if s.MaxMutations < 0 {
		return fmt.Errorf("config error: max mutations must be non-negative")
	}
	if s.CompileTimeout <= 0 {
		return fmt.Errorf("config error: compile timeout must be positive")
	}
	if s.ResumesDir == "" {
		return fmt.Errorf("config error: resumes dir is empty")
	}
	return nil
}

// ArtifactsDir returns the directory where compiled PDFs are persisted.
func (s Settings) ArtifactsDir() string {
	return filepath.Join(s.RunsDir, "artifacts")
}

func envStr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitModels(raw string) []string {
	var models []string
	for _, part := range strings.Split(raw, ",") {
		if m := strings.TrimSpace(part); m != "" {
			models = append(models, m)
		}
	}
	return models
}
