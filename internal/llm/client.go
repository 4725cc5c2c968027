package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Result is the normalized outcome of a chat completion call.
type Result struct {
	Content    string
	TokensUsed int // 0 when the provider reports no usage metadata
	Model      string
}

// Options control a single chat completion request.
type Options struct {
	// System is the system instruction prepended to the conversation.
	System string
	// Model overrides the tier's configured model when non-empty.
	Model string
	// Tier selects the configured model when Model is empty.
	Tier ModelTier
	// JSON requests a strict JSON response from the provider.
	JSON bool
	// Temperature defaults to 0.7 when zero.
	Temperature float32
}

// Client is an abstraction over LLM providers
type Client interface {
	// Chat sends a single-turn prompt and returns the normalized result
	Chat(ctx context.Context, prompt string, opts Options) (*Result, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Chat sends a single-turn prompt and returns the normalized result
func (c *GeminiClient) Chat(ctx context.Context, prompt string, opts Options) (*Result, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = c.config.GetModel(opts.Tier)
	}
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", opts.Tier)
	}

	model := c.client.GenerativeModel(modelName)

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	model.SetTemperature(temperature)

	if opts.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.System)},
		}
	}
	if opts.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}

	if opts.JSON {
		// Clean any markdown code block wrappers
		text = CleanJSONBlock(text)
	}

	result := &Result{
		Content: text,
		Model:   modelName,
	}
	if resp.UsageMetadata != nil {
		result.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return result, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
