package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docmind/expense-audit/internal/llm"
	"github.com/docmind/expense-audit/internal/model"
)

// descriptionLimit bounds the source-text snippet included in the prompt.
const descriptionLimit = 200

// defaultCategoryReasoning fills the reasoning field when the model omits it
// or the stage degrades to its defaults.
const defaultCategoryReasoning = "Category classification completed"

// categoryHints gives the model a few examples per category.
var categoryHints = map[string]string{
	"Food & Dining":   "restaurants, groceries, coffee shops",
	"Transportation":  "gas, parking, public transit, rideshare",
	"Office Supplies": "stationery, equipment",
	"Travel":          "hotels, flights, car rentals",
	"Utilities":       "internet, phone, electricity",
	"Entertainment":   "movies, events, subscriptions",
	"Healthcare":      "medical, pharmacy, insurance",
	"Miscellaneous":   "anything that doesn't fit above",
}

const categorizationPromptTemplate = `You are an expert financial analyst specializing in expense categorization.

Given the following expense information, classify it into the most appropriate category.

Expense Data:
Vendor: %s
Amount: $%.2f
Items: %s
Description: %s

Available categories:
%s
Return a JSON object with:
- category: the main category
- subcategory: more specific classification if applicable
- confidence: your confidence score (0-1)
- reasoning: brief explanation of why this category was chosen

Return only the JSON object.`

// CategorizationInput carries the fields the categorization stage consumes.
// Description is the raw source text; the stage bounds it itself.
type CategorizationInput struct {
	Vendor      string
	Description string
	Items       []string
	Amount      float64
}

// CategorizationAgent assigns a fixed-set category to an expense. Any
// category the model invents outside the fixed set collapses to
// Miscellaneous.
type CategorizationAgent struct {
	client Generator
	logger *slog.Logger
}

// NewCategorizationAgent creates a categorization stage backed by the given client.
func NewCategorizationAgent(client Generator, logger *slog.Logger) *CategorizationAgent {
	return &CategorizationAgent{client: client, logger: logger}
}

// Name identifies the stage in the audit trail.
func (a *CategorizationAgent) Name() string { return "categorization" }

// Prompt renders the categorization request.
func (a *CategorizationAgent) Prompt(in CategorizationInput) string {
	vendor := in.Vendor
	if vendor == "" {
		vendor = model.UnknownVendor
	}

	items := "Not specified"
	if len(in.Items) > 0 {
		items = strings.Join(in.Items, ", ")
	}

	var categoryList strings.Builder
	for _, c := range model.Categories {
		fmt.Fprintf(&categoryList, "- %s (%s)\n", c, categoryHints[c])
	}

	return fmt.Sprintf(categorizationPromptTemplate,
		vendor,
		in.Amount,
		items,
		snippet(in.Description),
		categoryList.String())
}

// Process runs the stage. The returned string is the raw model response for
// the audit trail.
func (a *CategorizationAgent) Process(ctx context.Context, in CategorizationInput) (model.CategoryResult, string) {
	raw, err := a.client.Generate(ctx, a.Prompt(in), defaultMaxTokens)
	if err != nil {
		a.logger.Warn("categorization generation failed", "error", err)
		return defaultCategoryResult(generationMarker(err)), ""
	}

	rec, perr := parseCategory(raw)
	if perr != nil {
		a.logger.Warn("categorization response not parseable", "error", perr)
		rec = defaultCategoryResult(parseMarker(perr))
	}
	rec.Normalize()
	return rec, raw
}

func defaultCategoryResult(errMarker string) model.CategoryResult {
	return model.CategoryResult{
		Category:   model.CategoryMiscellaneous,
		Confidence: 0.5,
		Reasoning:  defaultCategoryReasoning,
		Err:        errMarker,
	}
}

func parseCategory(content string) (model.CategoryResult, error) {
	var resp struct {
		Category    *string  `json:"category"`
		Subcategory *string  `json:"subcategory"`
		Reasoning   *string  `json:"reasoning"`
		Confidence  *float64 `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(llm.CleanResponse(content)), &resp); err != nil {
		return model.CategoryResult{}, fmt.Errorf("invalid categorization JSON: %w", err)
	}

	rec := model.CategoryResult{
		Category:   model.CategoryMiscellaneous,
		Confidence: 0.5,
		Reasoning:  defaultCategoryReasoning,
	}
	if resp.Category != nil {
		rec.Category = *resp.Category
	}
	if resp.Subcategory != nil {
		rec.Subcategory = *resp.Subcategory
	}
	if resp.Reasoning != nil {
		rec.Reasoning = *resp.Reasoning
	}
	if resp.Confidence != nil {
		rec.Confidence = *resp.Confidence
	}
	return rec, nil
}

// snippet bounds the description to the first descriptionLimit characters.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= descriptionLimit {
		return text
	}
	return string(runes[:descriptionLimit])
}
