package parsing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicExtractor uses the Anthropic Messages API as the extraction model.
type AnthropicExtractor struct {
	modelName string
	client    anthropic.Client
}

func NewAnthropicExtractor(apiKey, modelName string) *AnthropicExtractor {
	return &AnthropicExtractor{
		modelName: modelName,
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (e *AnthropicExtractor) Extract(ctx context.Context, req Request) (*Draft, error) {
	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON in model reply: %q", text)
	}

	var payload providerPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding model reply: %w", err)
	}
	return payload.toDraft(req)
}
