// Package phone normalizes free-text phone strings into canonical matching
// keys. The primary market has one dominant mobile-number shape that is
// checked with a cheap tiered heuristic; a full international parser is the
// fallback, not the hot path.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// UAE mobile numbers: country code 971, nine national digits starting with
// an operator prefix from the allow-list.
const (
	countryCode    = "971"
	nationalLength = 9
)

var operatorPrefixes = map[string]bool{
	"50": true,
	"52": true,
	"54": true,
	"55": true,
	"56": true,
	"58": true,
}

// Normalizer turns raw phone strings into canonical keys.
type Normalizer struct {
	// Extended enables the international parser fallback for numbers the
	// regional heuristic does not recognize.
	Extended bool
	// Region is the default region for ambiguous numbers in extended mode,
	// e.g. "AE".
	Region string
}

// Normalize returns the canonical matching key for raw and whether the
// number is considered a valid mobile number. The key is digits only with
// the country code applied where inferable and no leading +. Empty input
// yields ("", false); parser failures degrade to the digits-only key, never
// an error.
func (n Normalizer) Normalize(raw string) (string, bool) {
	digits := extractDigits(raw)
	if digits == "" {
		return "", false
	}

	if key, ok := matchRegional(digits); ok {
		return key, true
	}

	if n.Extended {
		if key, valid, ok := parseInternational(raw, n.Region); ok {
			return key, valid
		}
	}

	return digits, false
}

// extractDigits strips whitespace and punctuation, keeps digits only, and
// collapses a leading international dialing 00.
func extractDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "00") {
		digits = strings.TrimPrefix(digits, "00")
	}
	return digits
}

// matchRegional applies the UAE mobile heuristic to a digits-only string.
// Accepted shapes: 9715XXXXXXXX (canonical), 05XXXXXXXX (local), and
// 5XXXXXXXX (bare national).
func matchRegional(digits string) (string, bool) {
	var national string
	switch {
	case len(digits) == len(countryCode)+nationalLength && strings.HasPrefix(digits, countryCode):
		national = digits[len(countryCode):]
	case len(digits) == nationalLength+1 && strings.HasPrefix(digits, "0"):
		national = digits[1:]
	case len(digits) == nationalLength:
		national = digits
	default:
		return "", false
	}
	if !operatorPrefixes[national[:2]] {
		return "", false
	}
	return countryCode + national, true
}

// parseInternational delegates to the libphonenumber port. The third return
// reports whether parsing succeeded at all; validity is the library's own
// verdict.
func parseInternational(raw, region string) (key string, valid, ok bool) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return "", false, false
	}
	e164 := phonenumbers.Format(num, phonenumbers.E164)
	return strings.TrimPrefix(e164, "+"), phonenumbers.IsValidNumber(num), true
}
