package llm

import (
	"context"
	"strings"
)

// mockClient is a deterministic offline provider used for demos and local
// runs without API credentials. Responses are canned per stage, selected by
// keywords that each stage's prompt template is guaranteed to contain.
type mockClient struct{}

func newMockClient() Client {
	return &mockClient{}
}

// Generate returns a canned structured response matching the stage that
// produced the prompt.
func (c *mockClient) Generate(_ context.Context, prompt string, _ int) (string, error) {
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "extract the key information"):
		return `{
	"vendor": "Starbucks Coffee",
	"amount": 8.50,
	"date": "2025-12-22",
	"items": ["Grande Coffee", "Blueberry Muffin", "Tax"],
	"confidence": 0.95
}`, nil
	case strings.Contains(lower, "expense categorization"):
		return `{
	"category": "Food & Dining",
	"subcategory": "Coffee Shops",
	"confidence": 0.88,
	"reasoning": "Receipt shows coffee and pastry purchases from Starbucks"
}`, nil
	case strings.Contains(lower, "fraud detection"):
		return `{
	"is_fraudulent": false,
	"risk_level": "Low",
	"confidence": 0.92,
	"reasoning": "Transaction amount and vendor are consistent with user's history",
	"recommendations": ["No action required"]
}`, nil
	case strings.Contains(lower, "audit report"):
		return `{
	"status": "Approved",
	"summary": "Business expense for coffee and pastry at Starbucks. Amount within normal range for this category.",
	"recommendations": ["No action required"],
	"overall_confidence": 0.91,
	"key_findings": ["Reasonable amount for coffee shop purchase", "Vendor matches historical pattern"]
}`, nil
	default:
		return "Mock response: analysis complete.", nil
	}
}
