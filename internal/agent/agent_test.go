package agent

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// stubGenerator returns a fixed response or error and records every prompt
// it was asked to complete.
type stubGenerator struct {
	err      error
	response string
	prompts  []string
	mu       sync.Mutex
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
