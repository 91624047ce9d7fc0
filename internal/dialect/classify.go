package dialect

import (
	"strings"

	"pricing-compliance-portal/internal/tabular"
)

// minConfidence is the detection threshold: below 40% of a dialect's
// signature headers the batch is handled as generic.
const minConfidence = 40

// Detection is the classifier verdict for one whole batch
type Detection struct {
	Dialect    Dialect
	Confidence int // 0-100, fraction of signature headers present
}

// Classify decides which dialect a batch follows. It runs once per batch:
// a file is assumed to use one consistent layout throughout. An empty batch
// yields the generic dialect with confidence 0.
func Classify(rows []tabular.Row) Detection {
	if len(rows) == 0 {
		return Detection{Dialect: generic, Confidence: 0}
	}

	present := make(map[string]bool, len(rows[0].Headers))
	for _, h := range rows[0].Headers {
		present[normalizeHeader(h)] = true
	}

	best := Detection{Dialect: generic, Confidence: score(generic, present)}
	bestSpecific := -1
	for _, d := range Known {
		s := score(d, present)
		// strict greater-than keeps declaration order as the tie-breaker
		if s > bestSpecific {
			bestSpecific = s
			if s >= minConfidence {
				best = Detection{Dialect: d, Confidence: s}
			}
		}
	}
	return best
}

// score returns the percentage of d's signature headers found in present
func score(d Dialect, present map[string]bool) int {
	if len(d.Signature) == 0 {
		return 0
	}
	hits := 0
	for _, h := range d.Signature {
		if present[normalizeHeader(h)] {
			hits++
		}
	}
	return hits * 100 / len(d.Signature)
}

// normalizeHeader folds case and surrounding whitespace for comparison
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Lookup finds the source cell for a canonical field by walking the
// dialect's alias list against the row's headers (case-insensitive).
// The second result reports whether any alias column was present at all.
func (d Dialect) Lookup(row tabular.Row, field Field) (string, bool) {
	for _, alias := range d.Aliases[field] {
		for _, h := range row.Headers {
			if normalizeHeader(h) == normalizeHeader(alias) {
				return row.Cells[h], true
			}
		}
	}
	return "", false
}
