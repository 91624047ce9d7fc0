package mapper

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentinel markers meaning "explicitly absent" rather than a literal value
func isSentinel(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == "X" || s == "x"
}

// coerceDecimal turns a raw cell into a number. Everything except digits,
// '.' and '-' is stripped first (thousands separators, currency suffixes,
// stray spaces). Sentinels and unparseable leftovers both mean absent.
func coerceDecimal(raw string) (float64, bool) {
	if isSentinel(raw) {
		return 0, false
	}

	var b strings.Builder
	for _, r := range strings.ReplaceAll(raw, ",", ".") {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// coerceInt is coerceDecimal truncated to a whole number
func coerceInt(raw string) (int, bool) {
	v, ok := coerceDecimal(raw)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// dateLayouts accepted in source files, first match wins
var dateLayouts = []string{"2006-01-02", "02.01.2006", "2.1.2006", "02/01/2006"}

// coerceDate passes a present, non-sentinel date through normalized to
// ISO form. An absent date is substituted with today at commit time, so
// the canonical schema never carries a null date. A present but
// unparseable value is returned verbatim for the validator to reject.
func coerceDate(raw string, today time.Time) string {
	s := strings.TrimSpace(raw)
	if isSentinel(s) {
		return today.Format("2006-01-02")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// WellFormedDate reports whether a coerced date is in canonical ISO form
func WellFormedDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// coerceText trims free text; nil means the source said nothing
func coerceText(raw string, present bool) *string {
	if !present {
		return nil
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}
