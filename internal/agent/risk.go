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

// historyLimit caps how many historical records the stage considers. Longer
// lists are truncated to the first historyLimit entries (the caller supplies
// most-recent first), never rejected.
const historyLimit = 10

// noHistorySentinel is rendered into the prompt when no history is supplied.
const noHistorySentinel = "No historical data available"

// defaultRiskReasoning fills the reasoning field when the stage degrades.
const defaultRiskReasoning = "Fraud analysis completed"

const riskPromptTemplate = `You are a fraud detection expert analyzing business expense transactions.

Current Transaction:
Vendor: %s
Amount: $%.2f
Category: %s
Date: %s

Historical Transactions (last 10):
%s

Company Policies:
- Meals must be reasonable (< $50 per person)
- Office supplies should match business needs
- Travel expenses require pre-approval
- Personal expenses are not reimbursable

Analyze for:
1. Fraud indicators (unusual amounts, suspicious vendors, frequency anomalies)
2. Policy compliance
3. Consistency with the user's spending patterns

Return a JSON object with:
- is_fraudulent: boolean
- risk_level: "Low", "Medium" or "High"
- confidence: 0-1 score
- reasoning: detailed explanation of the analysis
- recommendations: array of suggested actions

Return only the JSON object.`

// RiskInput carries the fields the risk stage consumes.
type RiskInput struct {
	Vendor   string
	Category string
	Date     string
	History  []model.HistoricalRecord
	Amount   float64
}

// RiskAgent judges an expense for fraud indicators and policy compliance
// against the caller's recent spending history.
type RiskAgent struct {
	client Generator
	logger *slog.Logger
}

// NewRiskAgent creates a risk assessment stage backed by the given client.
func NewRiskAgent(client Generator, logger *slog.Logger) *RiskAgent {
	return &RiskAgent{client: client, logger: logger}
}

// Name identifies the stage in the audit trail.
func (a *RiskAgent) Name() string { return "risk" }

// Prompt renders the risk assessment request.
func (a *RiskAgent) Prompt(in RiskInput) string {
	vendor := in.Vendor
	if vendor == "" {
		vendor = model.UnknownVendor
	}
	category := in.Category
	if category == "" {
		category = model.CategoryMiscellaneous
	}
	date := in.Date
	if date == "" {
		date = model.UnknownDate
	}

	return fmt.Sprintf(riskPromptTemplate,
		vendor,
		in.Amount,
		category,
		date,
		formatHistory(in.History))
}

// Process runs the stage. The returned string is the raw model response for
// the audit trail.
func (a *RiskAgent) Process(ctx context.Context, in RiskInput) (model.RiskAssessment, string) {
	raw, err := a.client.Generate(ctx, a.Prompt(in), defaultMaxTokens)
	if err != nil {
		a.logger.Warn("risk generation failed", "error", err)
		return defaultRiskAssessment(generationMarker(err)), ""
	}

	rec, perr := parseRisk(raw)
	if perr != nil {
		a.logger.Warn("risk response not parseable", "error", perr)
		rec = defaultRiskAssessment(parseMarker(perr))
	}
	rec.Normalize()
	return rec, raw
}

func defaultRiskAssessment(errMarker string) model.RiskAssessment {
	return model.RiskAssessment{
		RiskLevel:       model.RiskMedium,
		Confidence:      0.5,
		Reasoning:       defaultRiskReasoning,
		Recommendations: []string{},
		Err:             errMarker,
	}
}

func parseRisk(content string) (model.RiskAssessment, error) {
	var resp struct {
		RiskLevel       *string  `json:"risk_level"`
		Reasoning       *string  `json:"reasoning"`
		Recommendations []string `json:"recommendations"`
		Confidence      *float64 `json:"confidence"`
		IsFraudulent    *bool    `json:"is_fraudulent"`
	}

	if err := json.Unmarshal([]byte(llm.CleanResponse(content)), &resp); err != nil {
		return model.RiskAssessment{}, fmt.Errorf("invalid risk JSON: %w", err)
	}

	rec := model.RiskAssessment{
		RiskLevel:       model.RiskMedium,
		Confidence:      0.5,
		Reasoning:       defaultRiskReasoning,
		Recommendations: []string{},
	}
	if resp.IsFraudulent != nil {
		rec.IsFraudulent = *resp.IsFraudulent
	}
	if resp.RiskLevel != nil {
		rec.RiskLevel = model.RiskLevel(*resp.RiskLevel)
	}
	if resp.Confidence != nil {
		rec.Confidence = *resp.Confidence
	}
	if resp.Reasoning != nil {
		rec.Reasoning = *resp.Reasoning
	}
	if resp.Recommendations != nil {
		rec.Recommendations = resp.Recommendations
	}
	return rec, nil
}

// formatHistory renders the considered history deterministically, one line
// per record.
func formatHistory(history []model.HistoricalRecord) string {
	if len(history) == 0 {
		return noHistorySentinel
	}
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}

	var b strings.Builder
	for i, h := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		vendor := h.Vendor
		if vendor == "" {
			vendor = model.UnknownVendor
		}
		category := h.Category
		if category == "" {
			category = model.CategoryMiscellaneous
		}
		fmt.Fprintf(&b, "- %s: $%.2f (%s)", vendor, h.Amount, category)
	}
	return b.String()
}
