package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient talks to the Anthropic API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	apiKey string
}

// NewAnthropicClient creates an Anthropic model client.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		apiKey: apiKey,
	}, nil
}

// Vendor returns the vendor identifier.
func (c *AnthropicClient) Vendor() string {
	return "anthropic"
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

// Probe reports readiness. The hosted API is assumed reachable when a key
// is configured; there is no cheap unauthenticated health endpoint.
func (c *AnthropicClient) Probe(_ context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}
	return nil
}

// Complete sends a prompt and returns the completion text.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content, nil
}
