package model

import "time"

// StageTrace records the raw outcome of one pipeline stage for the audit
// trail: which stage ran, the unparsed model response, any degradation
// marker, and how long the stage took.
type StageTrace struct {
	Stage       string        `json:"stage"`
	RawResponse string        `json:"raw_response,omitempty"`
	Err         string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// PipelineResult aggregates every stage's structured output for one audit
// invocation, plus the ordered per-stage trace.
type PipelineResult struct {
	Expense        ExtractedExpense `json:"expense_data"`
	Categorization CategoryResult   `json:"categorization"`
	Risk           RiskAssessment   `json:"fraud_analysis"`
	Summary        AuditSummary     `json:"audit_summary"`
	Trace          []StageTrace     `json:"processing_steps"`
	AnomalyScore   float64          `json:"anomaly_score"`
}
