package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Bot validation
	if c.Bot.Model == "" {
		errs = append(errs, "bot.model must not be empty")
	}
	if c.Bot.MaxTokens < 1 {
		errs = append(errs, "bot.max_tokens must be >= 1")
	}
	if c.Bot.LLMTimeoutSeconds < 1 {
		errs = append(errs, "bot.llm_timeout_seconds must be >= 1")
	}
	if c.Bot.ToolTimeoutSeconds < 1 {
		errs = append(errs, "bot.tool_timeout_seconds must be >= 1")
	}
	if c.Bot.HistoryLimit < 1 {
		errs = append(errs, "bot.history_limit must be >= 1")
	}

	// Server validation: every entry needs a name and a command, and names
	// must be unique because tools are routed by server name.
	seen := make(map[string]bool)
	for i, srv := range c.Servers {
		if srv.Name == "" {
			errs = append(errs, fmt.Sprintf("servers[%d] is missing a name", i))
			continue
		}
		if seen[srv.Name] {
			errs = append(errs, fmt.Sprintf("servers[%d] duplicates name %q", i, srv.Name))
		}
		seen[srv.Name] = true
		if srv.Command == "" {
			errs = append(errs, fmt.Sprintf("server %q is missing a command", srv.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
