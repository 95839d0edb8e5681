package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmind/expense-audit/internal/anomaly"
	"github.com/docmind/expense-audit/internal/model"
)

// scriptedGenerator returns one canned response per stage, routed by the
// stage-identifying phrases in each prompt template.
type scriptedGenerator struct {
	extraction     string
	categorization string
	risk           string
	summary        string
	err            error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	if g.err != nil {
		return "", g.err
	}

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "extract the key information"):
		return g.extraction, nil
	case strings.Contains(lower, "expense categorization"):
		return g.categorization, nil
	case strings.Contains(lower, "fraud detection"):
		return g.risk, nil
	case strings.Contains(lower, "audit report"):
		return g.summary, nil
	default:
		return "", fmt.Errorf("unrecognized prompt: %s", prompt)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func coffeeScript() *scriptedGenerator {
	return &scriptedGenerator{
		extraction: `{"vendor": "Starbucks Coffee", "amount": 8.50, "date": "2025-12-22",
			"items": ["Grande Coffee", "Blueberry Muffin"], "confidence": 0.95}`,
		categorization: `{"category": "Food & Dining", "subcategory": "Coffee Shops",
			"confidence": 0.88, "reasoning": "coffee and pastry purchase"}`,
		risk: `{"is_fraudulent": false, "risk_level": "Low", "confidence": 0.92,
			"reasoning": "consistent with history", "recommendations": ["No action required"]}`,
		summary: `{"status": "Approved", "summary": "Routine coffee purchase.",
			"recommendations": ["No action required"], "overall_confidence": 0.91,
			"key_findings": ["Amount within normal range"]}`,
	}
}

func coffeeHistory() []model.HistoricalRecord {
	var records []model.HistoricalRecord
	for i := 0; i < 14; i++ {
		records = append(records, model.HistoricalRecord{
			Vendor:   "Starbucks Coffee",
			Category: "Food & Dining",
			Amount:   8.0 + 0.25*float64(i%5),
		})
	}
	records = append(records,
		model.HistoricalRecord{Vendor: "Shell", Category: "Transportation", Amount: 45},
		model.HistoricalRecord{Vendor: "Staples", Category: "Office Supplies", Amount: 32},
		model.HistoricalRecord{Vendor: "Comcast", Category: "Utilities", Amount: 89},
		model.HistoricalRecord{Vendor: "Delta", Category: "Travel", Amount: 120},
		model.HistoricalRecord{Vendor: "AMC", Category: "Entertainment", Amount: 18},
		model.HistoricalRecord{Vendor: "CVS", Category: "Healthcare", Amount: 24},
	)
	return records
}

func TestPipeline_Process_RoutineExpense(t *testing.T) {
	p := New(coffeeScript(), anomaly.NewDetector(), testLogger())

	result, err := p.Process(context.Background(), "STARBUCKS\nGrande Coffee $8.50", coffeeHistory())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "Starbucks Coffee", result.Expense.Vendor)
	assert.InDelta(t, 8.50, result.Expense.Amount, 1e-9)
	assert.Equal(t, "Food & Dining", result.Categorization.Category)
	assert.Equal(t, model.RiskLow, result.Risk.RiskLevel)
	assert.Equal(t, model.StatusApproved, result.Summary.Status)
	assert.GreaterOrEqual(t, result.AnomalyScore, 0.0,
		"recurring purchase should match the historical pattern")

	// One trace entry per stage, in execution order, none degraded.
	require.Len(t, result.Trace, 4)
	stages := make([]string, len(result.Trace))
	for i, tr := range result.Trace {
		stages[i] = tr.Stage
		assert.Empty(t, tr.Err)
		assert.NotEmpty(t, tr.RawResponse)
	}
	assert.Equal(t, []string{"extraction", "categorization", "risk", "summary"}, stages)
}

func TestPipeline_Process_AnomalousExpense(t *testing.T) {
	script := coffeeScript()
	script.extraction = `{"vendor": "Luxury Imports LLC", "amount": 5000, "date": "2025-12-23",
		"items": [], "confidence": 0.9}`
	script.categorization = `{"category": "Miscellaneous", "confidence": 0.6,
		"reasoning": "no clear business category"}`
	script.risk = `{"is_fraudulent": true, "risk_level": "High", "confidence": 0.85,
		"reasoning": "amount far above historical spending", "recommendations": ["Escalate to finance"]}`
	script.summary = `{"status": "Needs Review", "summary": "Amount is far outside historical spending.",
		"recommendations": ["Escalate to finance"], "overall_confidence": 0.8,
		"key_findings": ["100x the typical transaction amount"]}`

	p := New(script, anomaly.NewDetector(), testLogger())

	result, err := p.Process(context.Background(), "INVOICE\nTotal: $5000.00", coffeeHistory())
	require.NoError(t, err)

	assert.Less(t, result.AnomalyScore, 0.0,
		"100x the usual amount should deviate from the pattern")
	assert.Equal(t, model.RiskHigh, result.Risk.RiskLevel)
	assert.Contains(t, []model.AuditStatus{model.StatusNeedsReview, model.StatusRejected},
		result.Summary.Status)
}

func TestPipeline_Process_FullDegradation(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("provider unavailable")}
	p := New(gen, anomaly.NewDetector(), testLogger())

	result, err := p.Process(context.Background(), "unreadable scan", nil)
	require.NoError(t, err, "stage failures must not fail the pipeline")
	require.NotNil(t, result)

	// Every stage degraded, yet the result is fully populated.
	assert.Equal(t, model.UnknownVendor, result.Expense.Vendor)
	assert.Equal(t, model.UnknownDate, result.Expense.Date)
	assert.Equal(t, model.CategoryMiscellaneous, result.Categorization.Category)
	assert.Equal(t, model.RiskMedium, result.Risk.RiskLevel)
	assert.Equal(t, model.StatusNeedsReview, result.Summary.Status)
	assert.Zero(t, result.AnomalyScore)

	require.Len(t, result.Trace, 4)
	for _, tr := range result.Trace {
		assert.NotEmpty(t, tr.Err, "stage %s should carry a degradation marker", tr.Stage)
		assert.Empty(t, tr.RawResponse)
	}
}

func TestPipeline_Process_Idempotent(t *testing.T) {
	detector := anomaly.NewDetector()
	p := New(coffeeScript(), detector, testLogger())
	history := coffeeHistory()

	first, err := p.Process(context.Background(), "STARBUCKS\n$8.50", history)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), "STARBUCKS\n$8.50", history)
	require.NoError(t, err)

	assert.Equal(t, first.Expense, second.Expense)
	assert.Equal(t, first.Categorization, second.Categorization)
	assert.Equal(t, first.Risk, second.Risk)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.AnomalyScore, second.AnomalyScore)
}

func TestPipeline_Process_CanceledContext(t *testing.T) {
	p := New(coffeeScript(), anomaly.NewDetector(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Process(ctx, "STARBUCKS\n$8.50", nil)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestNewWithConfig_Defaults(t *testing.T) {
	p := NewWithConfig(coffeeScript(), anomaly.NewDetector(), nil, Config{StageTimeout: -time.Second})
	require.NotNil(t, p)
	assert.Equal(t, DefaultConfig().StageTimeout, p.stageTimeout)
	assert.NotNil(t, p.logger)
}
