package parsing

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIExtractor talks to any OpenAI-compatible completion endpoint. The
// response format is forced to JSON mode and temperature kept low so the
// payload shape stays stable.
type OpenAIExtractor struct {
	modelName string
	client    *openai.Client
}

func NewOpenAIExtractor(apiKey, baseURL, modelName string) *OpenAIExtractor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIExtractor{
		modelName: modelName,
		client:    openai.NewClientWithConfig(cfg),
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, req Request) (*Draft, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an expense extraction engine. You output only JSON."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrProviderUnavailable)
	}

	raw, ok := extractJSON(resp.Choices[0].Message.Content)
	if !ok {
		return nil, fmt.Errorf("no JSON in completion: %q", resp.Choices[0].Message.Content)
	}

	var payload providerPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding completion: %w", err)
	}
	return payload.toDraft(req)
}
