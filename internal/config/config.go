package config

// Config holds all configuration for the application
type Config struct {
	OpenAI  OpenAIConfig
	Trace   TraceConfig
	Agent   AgentConfig
	Store   StoreConfig
	Scoring ScoringConfig
	Log     LogConfig
}

// OpenAIConfig holds the LLM provider configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// TraceConfig holds the trace backend configuration
type TraceConfig struct {
	Host      string `mapstructure:"host"`
	PublicKey string `mapstructure:"public_key"`
	SecretKey string `mapstructure:"secret_key"`
	Enabled   bool   `mapstructure:"enabled"`
}

// AgentConfig holds agent identity and model configuration
type AgentConfig struct {
	Name       string `mapstructure:"name"`
	Model      string `mapstructure:"model"`
	PromptName string `mapstructure:"prompt_name"`
	// UseManagedPrompts controls whether instructions are fetched from the
	// trace backend's prompt store at startup.
	UseManagedPrompts bool `mapstructure:"use_managed_prompts"`
}

// StoreConfig holds the climate database configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig holds quality scoring configuration
type ScoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// LengthCap is the word count at which response_length saturates at 1.0.
	LengthCap int `mapstructure:"length_cap"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// IsTracingConfigured reports whether the trace backend credentials are set.
func (c *Config) IsTracingConfigured() bool {
	return c.Trace.PublicKey != "" && c.Trace.SecretKey != ""
}
