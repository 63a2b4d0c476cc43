// Package gemini adapts Google's Gemini API to the provider interface.
package gemini

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Cyclone1070/fraudinv/internal/provider"
)

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client          GeminiClient
	modelName       string
	maxOutputTokens int32

	// Gemini may omit call ids; synthesised ones must stay unique for the
	// lifetime of the provider so results can be matched back.
	callSeq atomic.Int64
}

// New creates a provider for the given client and model.
func New(client GeminiClient, modelName string, maxOutputTokens int) *GeminiProvider {
	return &GeminiProvider{
		client:          client,
		modelName:       modelName,
		maxOutputTokens: int32(maxOutputTokens),
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate sends the conversation to Gemini and classifies the first candidate.
func (p *GeminiProvider) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	contents := toGeminiContents(req.Messages)
	config := toGeminiConfig(req.System, p.maxOutputTokens)
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return fromGeminiResponse(resp, p.nextCallID), nil
}

func (p *GeminiProvider) nextCallID() string {
	return fmt.Sprintf("call_%d", p.callSeq.Add(1))
}
