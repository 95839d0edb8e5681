package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/docmind/expense-audit/internal/common"
)

// geminiClient implements the Client interface using Google Gemini.
type geminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int
}

// newGeminiClient creates a new Gemini client.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.3
	}

	return &geminiClient{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate sends the prompt to Gemini and returns the raw completion text.
func (c *geminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	maxTokens = resolveMaxTokens(maxTokens, c.maxTokens)

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return responseText.String(), nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}
