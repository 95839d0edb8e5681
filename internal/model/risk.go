package model

// RiskLevel grades the fraud/policy risk of an expense.
type RiskLevel string

// Risk levels, ordered from least to most severe.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskAssessment is the risk stage's structured output.
type RiskAssessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Reasoning       string    `json:"reasoning"`
	Err             string    `json:"error,omitempty"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	IsFraudulent    bool      `json:"is_fraudulent"`
}

// Normalize collapses unrecognized risk levels to Medium and clamps the
// confidence into [0, 1].
func (r *RiskAssessment) Normalize() {
	switch r.RiskLevel {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		r.RiskLevel = RiskMedium
	}
	r.Confidence = clampUnit(r.Confidence)
}
