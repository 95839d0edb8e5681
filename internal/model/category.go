package model

// CategoryMiscellaneous is the fallback bucket for anything the classifier
// cannot place, and for any category name outside the fixed set.
const CategoryMiscellaneous = "Miscellaneous"

// Categories is the fixed classification set for expenses. Order matters
// only for prompt rendering.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Office Supplies",
	"Travel",
	"Utilities",
	"Entertainment",
	"Healthcare",
	CategoryMiscellaneous,
}

// KnownCategory reports whether name is part of the fixed category set.
func KnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// CategoryResult is the categorization stage's structured output.
type CategoryResult struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Reasoning   string  `json:"reasoning"`
	Err         string  `json:"error,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Normalize collapses out-of-set categories to Miscellaneous and clamps the
// confidence into [0, 1].
func (r *CategoryResult) Normalize() {
	if !KnownCategory(r.Category) {
		r.Category = CategoryMiscellaneous
	}
	r.Confidence = clampUnit(r.Confidence)
}
