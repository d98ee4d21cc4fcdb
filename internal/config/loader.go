package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// OpenAI
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")
	cfg.OpenAI.BaseURL = v.GetString("api_base_url")

	// Trace backend
	cfg.Trace.Host = v.GetString("langfuse_host")
	cfg.Trace.PublicKey = v.GetString("langfuse_public_key")
	cfg.Trace.SecretKey = v.GetString("langfuse_secret_key")
	cfg.Trace.Enabled = v.GetBool("tracing_enabled")

	// Agent
	cfg.Agent.Name = v.GetString("agent_name")
	cfg.Agent.Model = v.GetString("agent_model")
	cfg.Agent.PromptName = v.GetString("prompt_name")
	cfg.Agent.UseManagedPrompts = v.GetBool("use_managed_prompts")

	// Store
	cfg.Store.Path = v.GetString("db_file")

	// Scoring
	cfg.Scoring.Enabled = v.GetBool("scoring_enabled")
	cfg.Scoring.LengthCap = v.GetInt("scoring_length_cap")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")
	cfg.Log.File = v.GetString("log_file")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "")

	v.SetDefault("langfuse_host", "https://cloud.langfuse.com")
	v.SetDefault("tracing_enabled", true)

	v.SetDefault("agent_name", "Climate Agriculture Analyst")
	v.SetDefault("agent_model", "gpt-4o-2024-08-06")
	v.SetDefault("prompt_name", "climate-agent-instructions")
	v.SetDefault("use_managed_prompts", true)

	v.SetDefault("db_file", "data/climate_agriculture.db")

	v.SetDefault("scoring_enabled", true)
	v.SetDefault("scoring_length_cap", 100)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_file", "logs/agent.log")
}

func validate(cfg *Config) error {
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.Scoring.LengthCap <= 0 {
		return fmt.Errorf("scoring_length_cap must be positive")
	}
	return nil
}
