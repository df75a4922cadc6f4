package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleClient talks to the Gemini API.
type GoogleClient struct {
	client *genai.Client
	model  string
}

// NewGoogleClient creates a Gemini model client.
func NewGoogleClient(apiKey, model string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if model == "" {
		model = "gemini-2.0-pro"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleClient{client: client, model: model}, nil
}

// Vendor returns the vendor identifier.
func (c *GoogleClient) Vendor() string {
	return "google"
}

// Model returns the configured model name.
func (c *GoogleClient) Model() string {
	return c.model
}

// Probe reports readiness; the client constructor already validated the
// key and the hosted API has no unauthenticated health endpoint.
func (c *GoogleClient) Probe(_ context.Context) error {
	if c.client == nil {
		return fmt.Errorf("google client not configured")
	}
	return nil
}

// Complete sends a prompt and returns the completion text.
func (c *GoogleClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("google API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("google returned no candidates")
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}
	return content, nil
}
