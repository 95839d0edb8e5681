// Package llm provides clients for text-generation providers.
//
// A Client is an opaque prompt-in, text-out capability. Parsing of the
// generated text into structured records is owned by the callers; clients
// only transport prompts and surface provider failures.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for text-generation providers.
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Config holds configuration for a generation client. MaxTokens is the
// default completion bound applied when a Generate call passes none.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	Timeout     time.Duration
}

// resolveMaxTokens picks the completion bound for one call: the per-call
// value, then the configured default, then 1000.
func resolveMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 1000
}
