// Package agent implements the analysis stages of the audit pipeline.
//
// Every stage follows the same contract: render a request from a fixed
// template, invoke the generation client, strictly parse the returned text,
// and fall back to a fully-populated default record carrying an error
// marker when the call or the parse fails. A stage never returns a Go error
// and never leaves a field unset, so the pipeline always completes with a
// complete, possibly degraded, result.
package agent

import "context"

// defaultMaxTokens bounds each generation call.
const defaultMaxTokens = 1000

// Generator is the opaque text-generation capability stages depend on:
// prompt in, text out, may fail with a transport error.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

func generationMarker(err error) string {
	return "generation failed: " + err.Error()
}

func parseMarker(err error) string {
	return "failed to parse model response: " + err.Error()
}
