package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/docmind/expense-audit/internal/llm"
	"github.com/docmind/expense-audit/internal/model"
)

// defaultSummaryText fills the summary field when the stage degrades.
const defaultSummaryText = "Audit completed"

const summaryPromptTemplate = `You are an audit specialist creating clear, professional expense audit reports.

Transaction Details:
- Vendor: %s
- Amount: $%.2f
- Category: %s
- Date: %s
- Extracted Items: %s

Analysis Results:
- Document Understanding: %d%% confidence
- Categorization: %s
- Fraud Risk: %s (%d%% confidence)
- Anomaly Score: %.2f

Based on all analysis, create a comprehensive audit summary.

Return a JSON object with:
- status: "Approved", "Rejected" or "Needs Review"
- summary: 2-3 sentence explanation
- recommendations: array of specific actions
- overall_confidence: 0-1 score
- key_findings: array of important observations

Return only the JSON object.`

// SummaryInput carries everything the summary stage consumes from the
// earlier stages.
type SummaryInput struct {
	Vendor               string
	Category             string
	Date                 string
	CategoryReasoning    string
	RiskLevel            model.RiskLevel
	Items                []string
	Amount               float64
	ExtractionConfidence float64
	RiskConfidence       float64
	AnomalyScore         float64
}

// SummaryAgent synthesizes the final verdict from all prior stage outputs.
// The status always resolves to a valid enum value; an unparseable response
// lands on NeedsReview.
type SummaryAgent struct {
	client Generator
	logger *slog.Logger
}

// NewSummaryAgent creates a summary stage backed by the given client.
func NewSummaryAgent(client Generator, logger *slog.Logger) *SummaryAgent {
	return &SummaryAgent{client: client, logger: logger}
}

// Name identifies the stage in the audit trail.
func (a *SummaryAgent) Name() string { return "summary" }

// Prompt renders the audit summary request. Percent fields are the [0,1]
// confidences scaled by 100 and rounded.
func (a *SummaryAgent) Prompt(in SummaryInput) string {
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
	reasoning := in.CategoryReasoning
	if reasoning == "" {
		reasoning = "Standard categorization"
	}
	riskLevel := in.RiskLevel
	if riskLevel == "" {
		riskLevel = model.RiskMedium
	}

	items := "None specified"
	if len(in.Items) > 0 {
		items = strings.Join(in.Items, ", ")
	}

	return fmt.Sprintf(summaryPromptTemplate,
		vendor,
		in.Amount,
		category,
		date,
		items,
		percent(in.ExtractionConfidence),
		reasoning,
		riskLevel,
		percent(in.RiskConfidence),
		in.AnomalyScore)
}

// Process runs the stage. The returned string is the raw model response for
// the audit trail.
func (a *SummaryAgent) Process(ctx context.Context, in SummaryInput) (model.AuditSummary, string) {
	raw, err := a.client.Generate(ctx, a.Prompt(in), defaultMaxTokens)
	if err != nil {
		a.logger.Warn("summary generation failed", "error", err)
		return defaultAuditSummary(generationMarker(err)), ""
	}

	rec, perr := parseSummary(raw)
	if perr != nil {
		a.logger.Warn("summary response not parseable", "error", perr)
		rec = defaultAuditSummary(parseMarker(perr))
	}
	rec.Normalize()
	return rec, raw
}

func defaultAuditSummary(errMarker string) model.AuditSummary {
	return model.AuditSummary{
		Status:            model.StatusNeedsReview,
		Summary:           defaultSummaryText,
		OverallConfidence: 0.5,
		Recommendations:   []string{},
		KeyFindings:       []string{},
		Err:               errMarker,
	}
}

func parseSummary(content string) (model.AuditSummary, error) {
	var resp struct {
		Status            *string  `json:"status"`
		Summary           *string  `json:"summary"`
		Recommendations   []string `json:"recommendations"`
		KeyFindings       []string `json:"key_findings"`
		OverallConfidence *float64 `json:"overall_confidence"`
	}

	if err := json.Unmarshal([]byte(llm.CleanResponse(content)), &resp); err != nil {
		return model.AuditSummary{}, fmt.Errorf("invalid summary JSON: %w", err)
	}

	rec := model.AuditSummary{
		Status:            model.StatusNeedsReview,
		Summary:           defaultSummaryText,
		OverallConfidence: 0.5,
		Recommendations:   []string{},
		KeyFindings:       []string{},
	}
	if resp.Status != nil {
		rec.Status = model.AuditStatus(*resp.Status)
	}
	if resp.Summary != nil {
		rec.Summary = *resp.Summary
	}
	if resp.Recommendations != nil {
		rec.Recommendations = resp.Recommendations
	}
	if resp.KeyFindings != nil {
		rec.KeyFindings = resp.KeyFindings
	}
	if resp.OverallConfidence != nil {
		rec.OverallConfidence = *resp.OverallConfidence
	}
	return rec, nil
}

// percent scales a [0,1] confidence to a whole percentage.
func percent(v float64) int {
	return int(math.Round(v * 100))
}
