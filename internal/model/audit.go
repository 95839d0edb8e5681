package model

// AuditStatus is the final verdict on an expense.
type AuditStatus string

// Audit statuses. NeedsReview is the safe default whenever the summary
// stage cannot reach a parseable verdict.
const (
	StatusApproved    AuditStatus = "Approved"
	StatusRejected    AuditStatus = "Rejected"
	StatusNeedsReview AuditStatus = "Needs Review"
)

// AuditSummary is the summary stage's structured output: the final
// human-readable verdict synthesized from all prior stages.
type AuditSummary struct {
	Status            AuditStatus `json:"status"`
	Summary           string      `json:"summary"`
	Err               string      `json:"error,omitempty"`
	Recommendations   []string    `json:"recommendations"`
	KeyFindings       []string    `json:"key_findings"`
	OverallConfidence float64     `json:"overall_confidence"`
}

// Normalize collapses unrecognized statuses to NeedsReview and clamps the
// overall confidence into [0, 1].
func (s *AuditSummary) Normalize() {
	switch s.Status {
	case StatusApproved, StatusRejected, StatusNeedsReview:
	default:
		s.Status = StatusNeedsReview
	}
	s.OverallConfidence = clampUnit(s.OverallConfidence)
}
