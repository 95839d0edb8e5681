package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewClient creates a generation client for the configured provider. When a
// rate limit is configured, the client is wrapped so concurrent callers
// share one token bucket.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	case "gemini":
		client, err = newGeminiClient(ctx, cfg)
	case "mock":
		client = newMockClient()
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	if cfg.RateLimit > 0 {
		client = &throttledClient{
			inner:   client,
			limiter: newRateLimiter(cfg.RateLimit),
		}
	}

	return client, nil
}

// throttledClient wraps a Client with a shared token-bucket rate limiter.
type throttledClient struct {
	inner   Client
	limiter *rateLimiter
}

func (c *throttledClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}
	return c.inner.Generate(ctx, prompt, maxTokens)
}

// Close releases the limiter and the wrapped client when it is closeable.
func (c *throttledClient) Close() error {
	c.limiter.Close()
	if closer, ok := c.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
