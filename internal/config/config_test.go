package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	s := Load(root)

	assert.Equal(t, "gemini-2.5-flash", s.LLMModel)
	assert.Empty(t, s.FallbackModels)
	assert.Equal(t, 4096, s.LLMMaxTokens)
	assert.Equal(t, "/telegram/webhook", s.TelegramWebhookPath)
	assert.Equal(t, 8000, s.WebhookPort)
	assert.False(t, s.EnableDriveUpload)
	assert.InDelta(t, 0.15, s.MaxCostPerJob, 1e-9)
	assert.Equal(t, 0, s.MaxMutations)
	assert.Equal(t, 30*time.Second, s.CompileTimeout)
	assert.Equal(t, filepath.Join(root, "resumes"), s.ResumesDir)
	assert.Equal(t, filepath.Join(root, "runs", "artifacts"), s.ArtifactsDir())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "gemini-2.5-pro")
	t.Setenv("LLM_FALLBACK_MODELS", "gemini-2.5-flash, gemini-2.5-flash-lite ,")
	t.Setenv("RESUME_MAX_MUTATIONS", "3")
	t.Setenv("ENABLE_DRIVE_UPLOAD", "true")
	t.Setenv("COMPILE_TIMEOUT_SECONDS", "10")

	s := Load(t.TempDir())
	assert.Equal(t, "gemini-2.5-pro", s.LLMModel)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}, s.FallbackModels)
	assert.Equal(t, 3, s.MaxMutations)
	assert.True(t, s.EnableDriveUpload)
	assert.Equal(t, 10*time.Second, s.CompileTimeout)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WEBHOOK_PORT", "not-a-port")
	t.Setenv("MAX_COST_PER_JOB", "abc")

	s := Load(t.TempDir())
	assert.Equal(t, 8000, s.WebhookPort)
	assert.InDelta(t, 0.15, s.MaxCostPerJob, 1e-9)
}

func TestValidate(t *testing.T) {
	s := Load(t.TempDir())
	require.NoError(t, s.Validate())

	bad := s
	bad.WebhookPort = -1
	assert.Error(t, bad.Validate())

	bad = s
	bad.MaxMutations = -3
	assert.Error(t, bad.Validate())

	bad = s
	bad.CompileTimeout = 0
	assert.Error(t, bad.Validate())

	bad = s
	bad.ResumesDir = ""
	assert.Error(t, bad.Validate())
}
