package keys

import (
	"regexp"
	"strings"
)

var (
	keyRE     = regexp.MustCompile(`^[a-z0-9-]+$`)
	numberRE  = regexp.MustCompile(`^n?\d+(p\d+)?$`)
	mmddRE    = regexp.MustCompile(`^\d{4}$`)
	twoDigits = regexp.MustCompile(`^\d{2}$`)
)

// ParsedKey is the syntactic decomposition of a key. It does not reverse
// normalization: tokens are returned as they appear in the key.
type ParsedKey struct {
	Source       string   `json:"source"`
	DiscountType string   `json:"discount_type"`
	DateRange    string   `json:"date_range"`
	Additional   []string `json:"additional"`
}

// IsValidKey reports whether key has the shape BuildKey produces: only
// [a-z0-9-] and a length between MinKeyLength and MaxKeyLength.
func IsValidKey(key string) bool {
	if len(key) < MinKeyLength || len(key) > MaxKeyLength {
		return false
	}
	return keyRE.MatchString(key)
}

// ParseKey splits key into its positional parts: part 0 is the source, part 1
// the discount type ("porcentaje-15"), part 2 the date range ("0425-0426" or
// "2025-01-01-2025-12-31") and everything after that is additional.
//
// Empty or malformed input yields empty fields; ParseKey never panics.
func ParseKey(key string) ParsedKey {
	out := ParsedKey{Additional: []string{}}
	if key == "" || !keyRE.MatchString(key) {
		return out
	}

	segs := strings.Split(key, "-")
	out.Source = segs[0]
	i := 1

	// discount type + value
	if i < len(segs) {
		if i+1 < len(segs) && numberRE.MatchString(segs[i+1]) {
			out.DiscountType = segs[i] + "-" + segs[i+1]
			i += 2
		} else {
			out.DiscountType = segs[i]
			i++
		}
	}

	// date range
	switch {
	case isFullRange(segs[i:]):
		out.DateRange = strings.Join(segs[i:i+6], "-")
		i += 6
	case i+1 < len(segs) && mmddRE.MatchString(segs[i]) && mmddRE.MatchString(segs[i+1]):
		out.DateRange = segs[i] + "-" + segs[i+1]
		i += 2
	case i < len(segs):
		out.DateRange = segs[i]
		i++
	}

	if i < len(segs) {
		out.Additional = append(out.Additional, segs[i:]...)
	}
	return out
}

// isFullRange reports whether segs starts with YYYY-MM-DD-YYYY-MM-DD.
func isFullRange(segs []string) bool {
	if len(segs) < 6 {
		return false
	}
	return mmddRE.MatchString(segs[0]) && twoDigits.MatchString(segs[1]) && twoDigits.MatchString(segs[2]) &&
		mmddRE.MatchString(segs[3]) && twoDigits.MatchString(segs[4]) && twoDigits.MatchString(segs[5])
}

// DateRangeOf returns the date-range part of key, or "" when key has none.
func DateRangeOf(key string) string {
	return ParseKey(key).DateRange
}
