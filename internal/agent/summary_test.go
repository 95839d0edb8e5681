package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmind/expense-audit/internal/model"
)

func TestSummaryAgent_Process(t *testing.T) {
	tests := []struct {
		name     string
		response string
		genErr   error
		want     model.AuditSummary
		wantErr  bool
	}{
		{
			name: "valid response",
			response: `{"status": "Approved", "summary": "Routine coffee purchase.",
				"recommendations": ["No action required"], "overall_confidence": 0.91,
				"key_findings": ["Amount within range"]}`,
			want: model.AuditSummary{
				Status:            model.StatusApproved,
				Summary:           "Routine coffee purchase.",
				Recommendations:   []string{"No action required"},
				KeyFindings:       []string{"Amount within range"},
				OverallConfidence: 0.91,
			},
		},
		{
			name:     "unknown status collapses to Needs Review",
			response: `{"status": "Escalated", "summary": "Unusual spend.", "overall_confidence": 0.6}`,
			want: model.AuditSummary{
				Status:            model.StatusNeedsReview,
				Summary:           "Unusual spend.",
				Recommendations:   []string{},
				KeyFindings:       []string{},
				OverallConfidence: 0.6,
			},
		},
		{
			name:     "malformed response degrades to defaults",
			response: "no verdict",
			want: model.AuditSummary{
				Status:            model.StatusNeedsReview,
				Summary:           defaultSummaryText,
				Recommendations:   []string{},
				KeyFindings:       []string{},
				OverallConfidence: 0.5,
			},
			wantErr: true,
		},
		{
			name:   "generation failure degrades to defaults",
			genErr: errors.New("unavailable"),
			want: model.AuditSummary{
				Status:            model.StatusNeedsReview,
				Summary:           defaultSummaryText,
				Recommendations:   []string{},
				KeyFindings:       []string{},
				OverallConfidence: 0.5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: tt.response, err: tt.genErr}
			a := NewSummaryAgent(stub, testLogger())

			got, _ := a.Process(context.Background(), SummaryInput{
				Vendor:   "Acme",
				Amount:   100,
				Category: "Office Supplies",
			})

			if tt.wantErr {
				assert.NotEmpty(t, got.Err)
			} else {
				assert.Empty(t, got.Err)
			}
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Summary, got.Summary)
			assert.Equal(t, tt.want.Recommendations, got.Recommendations)
			assert.Equal(t, tt.want.KeyFindings, got.KeyFindings)
			assert.InDelta(t, tt.want.OverallConfidence, got.OverallConfidence, 1e-9)
		})
	}
}

func TestSummaryAgent_PromptRendersConfidences(t *testing.T) {
	a := NewSummaryAgent(&stubGenerator{}, testLogger())

	prompt := a.Prompt(SummaryInput{
		Vendor:               "Starbucks",
		Amount:               8.5,
		Category:             "Food & Dining",
		Date:                 "2025-12-22",
		ExtractionConfidence: 0.954,
		RiskLevel:            model.RiskLow,
		RiskConfidence:       0.925,
		AnomalyScore:         0.12,
	})

	require.Contains(t, prompt, "95% confidence")
	require.Contains(t, prompt, "Low (93% confidence)")
	require.Contains(t, prompt, "Anomaly Score: 0.12")
	require.Contains(t, prompt, "audit report")
}

func TestSummaryAgent_PromptDefaults(t *testing.T) {
	a := NewSummaryAgent(&stubGenerator{}, testLogger())

	prompt := a.Prompt(SummaryInput{Amount: 5})
	require.Contains(t, prompt, model.UnknownVendor)
	require.Contains(t, prompt, model.UnknownDate)
	require.Contains(t, prompt, "Standard categorization")
	require.Contains(t, prompt, "None specified")
	require.Contains(t, prompt, string(model.RiskMedium))
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.004, 0},
		{0.005, 1},
		{0.954, 95},
		{0.955, 96},
		{1, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, percent(tt.in), "percent(%v)", tt.in)
	}
}
