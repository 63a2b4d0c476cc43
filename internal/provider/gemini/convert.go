package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/fraudinv/internal/provider"
	"github.com/Cyclone1070/fraudinv/internal/tool"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation to Gemini Content format.
func toGeminiContents(messages []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if content := messageToGeminiContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// messageToGeminiContent converts a single message. Tool turns are sent with the
// user role, as Gemini expects function responses to come from the caller.
func messageToGeminiContent(msg provider.Message) *genai.Content {
	role := genai.RoleUser
	if msg.Role == provider.RoleAssistant {
		role = genai.RoleModel
	}

	parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls)+len(msg.ToolResults))

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, tc := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Name,
				Args: tc.Args,
			},
		})
	}

	for _, result := range msg.ToolResults {
		response := map[string]any{"content": result.Content}
		if result.IsError() {
			response = map[string]any{"error": result.Error}
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       result.CallID,
				Name:     result.Name,
				Response: response,
			},
		})
	}

	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: role, Parts: parts}
}

func toGeminiConfig(system string, maxOutputTokens int32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}
	if maxOutputTokens > 0 {
		config.MaxOutputTokens = maxOutputTokens
	}
	return config
}

// defaultSafetySettings turns the harm filters off. Fraud evidence routinely
// describes abuse and account compromise, which trips the default thresholds.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a canonical schema, recursing into properties and items.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Default:     s.Default,
	}
	if len(s.Enum) > 0 {
		out.Enum = s.Enum
	}
	if len(s.Required) > 0 {
		out.Required = s.Required
	}
	if s.Items != nil {
		out.Items = toGeminiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse classifies the first candidate. Anything other than a normal
// stop (truncation, safety, recitation, malformed calls) is Unrecognized.
func fromGeminiResponse(resp *genai.GenerateContentResponse, nextID func() string) *provider.Response {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return provider.NewUnrecognized(fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason), "")
		}
		return provider.NewUnrecognized("no candidates in response", "")
	}

	candidate := resp.Candidates[0]
	text, calls := splitParts(candidate, nextID)

	switch candidate.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	default:
		return provider.NewUnrecognized(fmt.Sprintf("finish reason %s", candidate.FinishReason), text)
	}

	if len(calls) > 0 {
		return provider.NewToolCallBatch(text, calls)
	}
	if strings.TrimSpace(text) == "" {
		return provider.NewUnrecognized("empty response", "")
	}
	return provider.NewFinalText(text)
}

func splitParts(candidate *genai.Candidate, nextID func() string) (string, []provider.ToolCall) {
	if candidate.Content == nil {
		return "", nil
	}
	var text strings.Builder
	var calls []provider.ToolCall
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = nextID()
			}
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			calls = append(calls, provider.ToolCall{ID: id, Name: part.FunctionCall.Name, Args: args})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return text.String(), calls
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.HTTPStatusError(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.HTTPStatusError(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return provider.TransportError(err)
}
