package model

// Placeholder values for fields the extraction stage could not determine.
const (
	UnknownVendor = "Unknown"
	UnknownDate   = "Unknown"
)

// ExtractedExpense is the extraction stage's structured output: the core
// fields of a receipt or invoice. Every field is always populated; unknown
// values carry the Unknown placeholders rather than empty strings.
type ExtractedExpense struct {
	Vendor     string   `json:"vendor"`
	Date       string   `json:"date"`
	Err        string   `json:"error,omitempty"`
	Items      []string `json:"items"`
	Amount     float64  `json:"amount"`
	Confidence float64  `json:"confidence"`
}

// Normalize fills unknown fields with their placeholders and clamps the
// confidence into [0, 1]. Amounts are floored at zero; a receipt never has
// a negative total.
func (e *ExtractedExpense) Normalize() {
	if e.Vendor == "" {
		e.Vendor = UnknownVendor
	}
	if e.Date == "" {
		e.Date = UnknownDate
	}
	if e.Items == nil {
		e.Items = []string{}
	}
	if e.Amount < 0 {
		e.Amount = 0
	}
	e.Confidence = clampUnit(e.Confidence)
}

// HistoricalRecord is one prior expense used as context for fraud analysis
// and anomaly scoring.
type HistoricalRecord struct {
	Vendor   string  `json:"vendor"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// clampUnit bounds a confidence-style value into [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
