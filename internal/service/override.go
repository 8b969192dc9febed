package service

import "github.com/yourusername/housing-predictor/internal/features"

// DegenerateInputRule short-circuits requests that carry none of the
// features the estimator depends on most. When it applies, the fixed value
// is served and recorded as overridden without invoking the estimator.
type DegenerateInputRule struct {
	Features []string
	Override float64
}

// DefaultDegenerateInputRule answers 0.0 when both RM and LSTAT are missing.
func DefaultDegenerateInputRule() *DegenerateInputRule {
	return &DegenerateInputRule{Features: []string{"RM", "LSTAT"}, Override: 0.0}
}

// Applies reports whether every rule feature is absent or null in raw.
func (r *DegenerateInputRule) Applies(raw map[string]any) bool {
	if len(r.Features) == 0 {
		return false
	}
	for _, name := range r.Features {
		if !features.IsMissing(raw, name) {
			return false
		}
	}
	return true
}

// Value is the prediction served when the rule applies.
func (r *DegenerateInputRule) Value() float64 {
	return r.Override
}
