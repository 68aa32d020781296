package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HF_TOKEN", "HF_BASE_URL", "HF_MODEL", "HTTP_ADDR", "HTTP_CLIENT_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "CONFIG_PATH", "SYSTEM_PROMPT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingToken)

	t.Setenv("HF_TOKEN", "")
	_, err = Load()
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HF_TOKEN", "hf_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7860", cfg.HTTPAddr)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "hf_test", cfg.Inference.Token)
	assert.Equal(t, DefaultModel, cfg.Inference.Model)
	assert.Equal(t, DefaultBaseURL, cfg.Inference.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Empty(t, cfg.SystemPrompt)
	assert.Zero(t, cfg.Controls.MaxTokens.Default)
}

func TestLoadInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_CLIENT_TIMEOUT")
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
log:
  level: debug
  rotation:
    max_size: 10
controls:
  max_tokens:
    max: 1024
    default: 256
  temperature:
    default: 0.7
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Log.Rotation.MaxSize)
	assert.Equal(t, 5, cfg.Log.Rotation.MaxBackups)
	assert.Equal(t, 1024, cfg.Controls.MaxTokens.Max)
	assert.Equal(t, 256, cfg.Controls.MaxTokens.Default)
	assert.InDelta(t, 0.7, cfg.Controls.Temperature.Default, 1e-9)
}

func TestLoadMissingYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	env := []byte("HF_TOKEN=from_file\nHF_MODEL=file-model\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), env, 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("HF_MODEL", "env-model")
	t.Setenv("SYSTEM_PROMPT", "You are a chemistry tutor.")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.Inference.Token)
	assert.Equal(t, "env-model", cfg.Inference.Model, "real environment must win over .env")
	assert.Equal(t, "You are a chemistry tutor.", cfg.SystemPrompt)
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	tests := map[string]string{
		"max_tokens": "controls:\n  max_tokens:\n    min: 3000\n    max: 2048\n",
		"top_p":      "controls:\n  top_p:\n    min: 0.9\n    max: 0.2\n",
		"negative":   "controls:\n  temperature:\n    default: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			t.Setenv("CONFIG_PATH", path)
			t.Setenv("HF_TOKEN", "hf_test")

			_, err := Load()
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}
