package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docmind/expense-audit/internal/llm"
	"github.com/docmind/expense-audit/internal/model"
)

const extractionPromptTemplate = `You are an expert document analyzer for expense receipts and invoices.

Given the following text from a receipt or invoice, extract the key information into a structured JSON format.

Document Text:
%s

Return a JSON object with the following fields:
- vendor: the business name
- amount: the total amount, as a number
- date: the transaction date (YYYY-MM-DD format if available)
- items: array of purchased items, if discernible
- confidence: your confidence score (0-1) in the extraction accuracy

Be precise and only extract information that is clearly present in the text.
If a field is not found, use null or an empty array as appropriate.

Return only the JSON object, no additional text.`

// ExtractionAgent turns raw document text into a structured expense record.
// Empty or low-information text yields a low-confidence, mostly-default
// record rather than an error; extraction never fails the pipeline.
type ExtractionAgent struct {
	client Generator
	logger *slog.Logger
}

// NewExtractionAgent creates an extraction stage backed by the given client.
func NewExtractionAgent(client Generator, logger *slog.Logger) *ExtractionAgent {
	return &ExtractionAgent{client: client, logger: logger}
}

// Name identifies the stage in the audit trail.
func (a *ExtractionAgent) Name() string { return "extraction" }

// Prompt renders the extraction request for the given document text.
func (a *ExtractionAgent) Prompt(text string) string {
	return fmt.Sprintf(extractionPromptTemplate, text)
}

// Process runs the stage. The returned string is the raw model response,
// kept for the audit trail; it is empty when the generation call failed.
func (a *ExtractionAgent) Process(ctx context.Context, text string) (model.ExtractedExpense, string) {
	raw, err := a.client.Generate(ctx, a.Prompt(text), defaultMaxTokens)
	if err != nil {
		a.logger.Warn("extraction generation failed", "error", err)
		rec := model.ExtractedExpense{Err: generationMarker(err)}
		rec.Normalize()
		return rec, ""
	}

	rec, perr := parseExpense(raw)
	if perr != nil {
		a.logger.Warn("extraction response not parseable", "error", perr)
		rec = model.ExtractedExpense{Err: parseMarker(perr)}
	}
	rec.Normalize()
	return rec, raw
}

// parseExpense strictly parses the model response. Missing fields are left
// at their zero values for Normalize to default.
func parseExpense(content string) (model.ExtractedExpense, error) {
	var resp struct {
		Vendor     *string  `json:"vendor"`
		Date       *string  `json:"date"`
		Amount     *float64 `json:"amount"`
		Confidence *float64 `json:"confidence"`
		Items      []string `json:"items"`
	}

	if err := json.Unmarshal([]byte(llm.CleanResponse(content)), &resp); err != nil {
		return model.ExtractedExpense{}, fmt.Errorf("invalid extraction JSON: %w", err)
	}

	rec := model.ExtractedExpense{Items: resp.Items}
	if resp.Vendor != nil {
		rec.Vendor = *resp.Vendor
	}
	if resp.Date != nil {
		rec.Date = *resp.Date
	}
	if resp.Amount != nil {
		rec.Amount = *resp.Amount
	}
	if resp.Confidence != nil {
		rec.Confidence = *resp.Confidence
	}
	return rec, nil
}
