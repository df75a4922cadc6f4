package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to OpenAI or any OpenAI-compatible endpoint, which
// covers local model servers exposing the same API.
type OpenAIClient struct {
	client     openai.Client
	model      string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI-compatible model client. A non-empty
// baseURL points the client at a self-hosted endpoint.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai API key or base URL is required")
	}
	if model == "" {
		model = "gpt-5.2-instant"
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client:     openai.NewClient(opts...),
		model:      model,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}, nil
}

// Vendor returns the vendor identifier.
func (c *OpenAIClient) Vendor() string {
	return "openai"
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Probe checks endpoint reachability. Self-hosted endpoints get an HTTP
// probe against the models listing; the hosted API is assumed reachable
// when a key is configured.
func (c *OpenAIClient) Probe(ctx context.Context) error {
	if c.baseURL == "" {
		return nil
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Complete sends a prompt and returns the completion text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(1024),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
