package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/fraudinv/internal/config"
	"github.com/Cyclone1070/fraudinv/internal/provider"
	anthropicprovider "github.com/Cyclone1070/fraudinv/internal/provider/anthropic"
	"github.com/Cyclone1070/fraudinv/internal/provider/gemini"
	openaiprovider "github.com/Cyclone1070/fraudinv/internal/provider/openai"
)

// apiKeyEnv lists the variables consulted per provider, first non-empty wins.
var apiKeyEnv = map[string][]string{
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
}

// APIKey resolves the provider credential. provider.api_key_env replaces the
// standard variable names when set.
func APIKey(cfg config.ProviderConfig, getenv func(string) string) (string, error) {
	names := apiKeyEnv[cfg.Name]
	if cfg.APIKeyEnv != "" {
		names = []string{cfg.APIKeyEnv}
	}
	for _, name := range names {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v, nil
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("unknown provider %q", cfg.Name)
	}
	return "", fmt.Errorf("%s environment variable is required", strings.Join(names, " or "))
}

// NewProvider is the production ProviderFactory.
func NewProvider(ctx context.Context, cfg config.ProviderConfig, getenv func(string) string) (provider.Provider, error) {
	key, err := APIKey(cfg, getenv)
	if err != nil {
		return nil, err
	}
	switch cfg.Name {
	case "gemini":
		client, err := gemini.NewRealGeminiClient(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.New(client, cfg.Model, cfg.MaxOutputTokens), nil
	case "anthropic":
		return anthropicprovider.New(anthropicprovider.NewMessagesClient(key, cfg.BaseURL), cfg.Model, cfg.MaxOutputTokens), nil
	case "openai":
		return openaiprovider.New(openaiprovider.NewChatCompletionsClient(key, cfg.BaseURL), cfg.Model, cfg.MaxOutputTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
