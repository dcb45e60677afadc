package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via the config
// file. Values present in the file override defaults, including explicit
// zero values; missing keys are left at their defaults.
type Config struct {
	Bot     BotConfig      `json:"bot"`
	Servers []ServerConfig `json:"servers"`
}

// BotConfig controls the conversation with the model.
type BotConfig struct {
	Model        string `json:"model"`
	MaxTokens    int64  `json:"max_tokens"`
	SystemPrompt string `json:"system_prompt"`

	// LLMTimeoutSeconds bounds each model call.
	LLMTimeoutSeconds int `json:"llm_timeout_seconds"` // Default: 120
	// ToolTimeoutSeconds bounds each tool execution.
	ToolTimeoutSeconds int `json:"tool_timeout_seconds"` // Default: 60
	// HistoryLimit caps how many thread messages are loaded as context.
	HistoryLimit int `json:"history_limit"` // Default: 200
}

// ServerConfig describes one MCP tool server to launch at startup.
type ServerConfig struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Model:              "claude-3-7-sonnet-20250219",
			MaxTokens:          1024,
			SystemPrompt:       "You are a helpful assistant integrated with Slack. You can use tools when necessary.",
			LLMTimeoutSeconds:  120,
			ToolTimeoutSeconds: 60,
			HistoryLimit:       200,
		},
	}
}
