package config

import (
	"fmt"
	"strings"
)

var (
	validProviders  = []string{"gemini", "anthropic", "openai"}
	validEmbedders  = []string{"hash", "api", "ollama"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"json", "text"}
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Provider validation
	if !oneOf(c.Provider.Name, validProviders) {
		errs = append(errs, fmt.Sprintf("provider.name must be one of %v", validProviders))
	}
	if strings.TrimSpace(c.Provider.Model) == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.MaxOutputTokens < 1 {
		errs = append(errs, "provider.max_output_tokens must be >= 1")
	}
	if c.Provider.TimeoutSeconds < 1 {
		errs = append(errs, "provider.timeout_seconds must be >= 1")
	}

	// Investigation validation
	if c.Investigation.MaxTurns < 1 {
		errs = append(errs, "investigation.max_turns must be >= 1")
	}
	t := c.Investigation.Thresholds
	for name, v := range map[string]float64{"escalate": t.Escalate, "verify": t.Verify, "monitor": t.Monitor, "dismiss": t.Dismiss} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("investigation.thresholds.%s must be within [0, 1]", name))
		}
	}
	if !(t.Escalate >= t.Verify && t.Verify >= t.Monitor && t.Monitor >= t.Dismiss) {
		errs = append(errs, "investigation.thresholds must satisfy escalate >= verify >= monitor >= dismiss")
	}

	// Data validation
	if strings.TrimSpace(c.Data.DatabasePath) == "" {
		errs = append(errs, "data.database_path must not be empty")
	}
	if strings.TrimSpace(c.Data.OutputDir) == "" {
		errs = append(errs, "data.output_dir must not be empty")
	}
	if !oneOf(c.Data.Embedding.Provider, validEmbedders) {
		errs = append(errs, fmt.Sprintf("data.embedding.provider must be one of %v", validEmbedders))
	}
	if c.Data.Embedding.Dimension < 1 {
		errs = append(errs, "data.embedding.dimension must be >= 1")
	}
	if c.Data.Embedding.TimeoutMs < 1 {
		errs = append(errs, "data.embedding.timeout_ms must be >= 1")
	}
	if c.Data.MaxSimilarResults < 1 {
		errs = append(errs, "data.max_similar_results must be >= 1")
	}
	if c.Data.MaxEventResults < 1 {
		errs = append(errs, "data.max_event_results must be >= 1")
	}
	if c.Data.MaxHistoryResults < 1 {
		errs = append(errs, "data.max_history_results must be >= 1")
	}

	// Runner validation
	if c.Runner.Workers < 1 {
		errs = append(errs, "runner.workers must be >= 1")
	}
	if strings.TrimSpace(c.Runner.WatchSchedule) == "" {
		errs = append(errs, "runner.watch_schedule must not be empty")
	}

	// Logging validation
	if !oneOf(strings.ToLower(c.Logging.Level), validLogLevels) {
		errs = append(errs, fmt.Sprintf("logging.level must be one of %v", validLogLevels))
	}
	if !oneOf(strings.ToLower(c.Logging.Format), validLogFormats) {
		errs = append(errs, fmt.Sprintf("logging.format must be one of %v", validLogFormats))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
