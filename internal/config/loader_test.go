package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.Equal(t, "https://cloud.langfuse.com", cfg.Trace.Host)
		assert.True(t, cfg.Trace.Enabled)
		assert.Equal(t, "Climate Agriculture Analyst", cfg.Agent.Name)
		assert.Equal(t, "gpt-4o-2024-08-06", cfg.Agent.Model)
		assert.Equal(t, "climate-agent-instructions", cfg.Agent.PromptName)
		assert.True(t, cfg.Agent.UseManagedPrompts)
		assert.Equal(t, "data/climate_agriculture.db", cfg.Store.Path)
		assert.True(t, cfg.Scoring.Enabled)
		assert.Equal(t, 100, cfg.Scoring.LengthCap)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("LANGFUSE_HOST", "https://langfuse.internal.example.com")
		t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-live")
		t.Setenv("LANGFUSE_SECRET_KEY", "sk-live")
		t.Setenv("AGENT_MODEL", "gpt-4o-mini")
		t.Setenv("DB_FILE", "/var/lib/climate/agri.db")
		t.Setenv("SCORING_LENGTH_CAP", "250")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://langfuse.internal.example.com", cfg.Trace.Host)
		assert.Equal(t, "pk-live", cfg.Trace.PublicKey)
		assert.Equal(t, "sk-live", cfg.Trace.SecretKey)
		assert.Equal(t, "gpt-4o-mini", cfg.Agent.Model)
		assert.Equal(t, "/var/lib/climate/agri.db", cfg.Store.Path)
		assert.Equal(t, 250, cfg.Scoring.LengthCap)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("missing API key fails", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("invalid length cap fails", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("SCORING_LENGTH_CAP", "-5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scoring_length_cap")
	})
}

func TestIsTracingConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.IsTracingConfigured())

	cfg.Trace.PublicKey = "pk"
	assert.False(t, cfg.IsTracingConfigured())

	cfg.Trace.SecretKey = "sk"
	assert.True(t, cfg.IsTracingConfigured())
}
