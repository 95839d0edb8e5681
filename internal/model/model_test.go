package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedExpense_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ExtractedExpense
		want ExtractedExpense
	}{
		{
			name: "zero value gets placeholders",
			in:   ExtractedExpense{},
			want: ExtractedExpense{Vendor: UnknownVendor, Date: UnknownDate, Items: []string{}},
		},
		{
			name: "populated record untouched",
			in:   ExtractedExpense{Vendor: "Shell", Date: "2025-11-02", Items: []string{"Fuel"}, Amount: 45, Confidence: 0.8},
			want: ExtractedExpense{Vendor: "Shell", Date: "2025-11-02", Items: []string{"Fuel"}, Amount: 45, Confidence: 0.8},
		},
		{
			name: "negative amount floored, confidence clamped",
			in:   ExtractedExpense{Vendor: "X", Date: "2025-01-01", Items: []string{}, Amount: -5, Confidence: 1.7},
			want: ExtractedExpense{Vendor: "X", Date: "2025-01-01", Items: []string{}, Amount: 0, Confidence: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Normalize()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryResult_Normalize(t *testing.T) {
	r := CategoryResult{Category: "Cryptocurrency", Confidence: -0.3}
	r.Normalize()
	assert.Equal(t, CategoryMiscellaneous, r.Category)
	assert.Zero(t, r.Confidence)

	for _, c := range Categories {
		r := CategoryResult{Category: c, Confidence: 0.5}
		r.Normalize()
		assert.Equal(t, c, r.Category, "known categories must survive normalization")
	}
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("Food & Dining"))
	assert.True(t, KnownCategory(CategoryMiscellaneous))
	assert.False(t, KnownCategory("food & dining"), "matching is exact")
	assert.False(t, KnownCategory(""))
}

func TestRiskAssessment_Normalize(t *testing.T) {
	tests := []struct {
		in   RiskLevel
		want RiskLevel
	}{
		{RiskLow, RiskLow},
		{RiskMedium, RiskMedium},
		{RiskHigh, RiskHigh},
		{"Critical", RiskMedium},
		{"", RiskMedium},
	}

	for _, tt := range tests {
		r := RiskAssessment{RiskLevel: tt.in, Confidence: 0.5}
		r.Normalize()
		assert.Equal(t, tt.want, r.RiskLevel)
	}
}

func TestAuditSummary_Normalize(t *testing.T) {
	tests := []struct {
		in   AuditStatus
		want AuditStatus
	}{
		{StatusApproved, StatusApproved},
		{StatusRejected, StatusRejected},
		{StatusNeedsReview, StatusNeedsReview},
		{"Escalated", StatusNeedsReview},
		{"", StatusNeedsReview},
	}

	for _, tt := range tests {
		s := AuditSummary{Status: tt.in, OverallConfidence: 2}
		s.Normalize()
		assert.Equal(t, tt.want, s.Status)
		assert.Equal(t, 1.0, s.OverallConfidence)
	}
}

func TestPipelineResult_JSONShape(t *testing.T) {
	result := PipelineResult{
		Expense:      ExtractedExpense{Vendor: "Starbucks", Date: "2025-12-22", Items: []string{}},
		AnomalyScore: -0.12,
		Trace:        []StageTrace{{Stage: "extraction"}},
	}

	payload, err := json.Marshal(&result)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	for _, key := range []string{"expense_data", "categorization", "fraud_analysis", "audit_summary", "processing_steps", "anomaly_score"} {
		assert.Contains(t, decoded, key)
	}
}
