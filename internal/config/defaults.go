package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider      ProviderConfig      `json:"provider" toml:"provider"`
	Investigation InvestigationConfig `json:"investigation" toml:"investigation"`
	Data          DataConfig          `json:"data" toml:"data"`
	Runner        RunnerConfig        `json:"runner" toml:"runner"`
	Logging       LoggingConfig       `json:"logging" toml:"logging"`
}

type ProviderConfig struct {
	Name            string `json:"name" toml:"name"`                           // Default: "gemini"
	Model           string `json:"model" toml:"model"`                         // Default: "gemini-2.5-pro"
	APIKeyEnv       string `json:"api_key_env" toml:"api_key_env"`             // Default: "" (provider's standard variable)
	BaseURL         string `json:"base_url" toml:"base_url"`                   // Default: ""
	MaxOutputTokens int    `json:"max_output_tokens" toml:"max_output_tokens"` // Default: 4096
	TimeoutSeconds  int    `json:"timeout_seconds" toml:"timeout_seconds"`     // Default: 120, per provider call
}

type InvestigationConfig struct {
	MaxTurns     int        `json:"max_turns" toml:"max_turns"`         // Default: 10
	Thresholds   Thresholds `json:"thresholds" toml:"thresholds"`       // Confidence bands per recommendation
	SystemPrompt string     `json:"system_prompt" toml:"system_prompt"` // Default: "" (built-in prompt)
}

// Thresholds are the minimum confidence scores for each recommendation band.
type Thresholds struct {
	Escalate float64 `json:"escalate" toml:"escalate"` // Default: 0.85
	Verify   float64 `json:"verify" toml:"verify"`     // Default: 0.60
	Monitor  float64 `json:"monitor" toml:"monitor"`   // Default: 0.40
	Dismiss  float64 `json:"dismiss" toml:"dismiss"`   // Default: 0.00
}

type DataConfig struct {
	DatabasePath string          `json:"database_path" toml:"database_path"` // Default: "data/fraud.db"
	OutputDir    string          `json:"output_dir" toml:"output_dir"`       // Default: "outputs/investigations"
	Embedding    EmbeddingConfig `json:"embedding" toml:"embedding"`

	// Result caps applied on top of whatever the model asks for
	MaxSimilarResults int `json:"max_similar_results" toml:"max_similar_results"` // Default: 20
	MaxEventResults   int `json:"max_event_results" toml:"max_event_results"`     // Default: 200
	MaxHistoryResults int `json:"max_history_results" toml:"max_history_results"` // Default: 500
}

type EmbeddingConfig struct {
	Provider  string `json:"provider" toml:"provider"`     // Default: "hash"; also "api", "ollama"
	BaseURL   string `json:"base_url" toml:"base_url"`     // Default: ""
	Model     string `json:"model" toml:"model"`           // Default: ""
	Dimension int    `json:"dimension" toml:"dimension"`   // Default: 256
	TimeoutMs int    `json:"timeout_ms" toml:"timeout_ms"` // Default: 30000
	APIKeyEnv string `json:"api_key_env" toml:"api_key_env"`
}

type RunnerConfig struct {
	Workers       int    `json:"workers" toml:"workers"`               // Default: 1 (sequential)
	WatchSchedule string `json:"watch_schedule" toml:"watch_schedule"` // Default: "@every 1m"
	InboxDir      string `json:"inbox_dir" toml:"inbox_dir"`           // Default: "inbox"
}

type LoggingConfig struct {
	Level  string `json:"level" toml:"level"`   // Default: "info"
	Format string `json:"format" toml:"format"` // Default: "text"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:            "gemini",
			Model:           "gemini-2.5-pro",
			MaxOutputTokens: 4096,
			TimeoutSeconds:  120,
		},
		Investigation: InvestigationConfig{
			MaxTurns: 10,
			Thresholds: Thresholds{
				Escalate: 0.85,
				Verify:   0.60,
				Monitor:  0.40,
				Dismiss:  0.00,
			},
		},
		Data: DataConfig{
			DatabasePath: "data/fraud.db",
			OutputDir:    "outputs/investigations",
			Embedding: EmbeddingConfig{
				Provider:  "hash",
				Dimension: 256,
				TimeoutMs: 30000,
			},
			MaxSimilarResults: 20,
			MaxEventResults:   200,
			MaxHistoryResults: 500,
		},
		Runner: RunnerConfig{
			Workers:       1,
			WatchSchedule: "@every 1m",
			InboxDir:      "inbox",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
