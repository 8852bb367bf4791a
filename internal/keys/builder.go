// Package keys turns a Discount into a deterministic, human-auditable key.
//
// A key is a hyphen-joined string of canonical tokens derived from the
// identifying fields of a discount only:
//
//	<source>-<type>-<value>-<dates>[-<weekdays>][-<payment>][-<where>][-<extra>][-<index>]
//
// for example "coto-porcentaje-15-0425-0426-coto". Keys are lowercase,
// restricted to [a-z0-9-] and bounded to MaxKeyLength characters; overlong
// keys keep their first three parts and replace the rest with a short MD5
// digest.
//
// The package has no I/O, holds no shared state and never logs. Every
// function is safe for concurrent use.
package keys

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

const (
	// MaxKeyLength bounds every key produced by BuildKey.
	MaxKeyLength = 85
	// MinKeyLength is the shortest key IsValidKey accepts.
	MinKeyLength = 10

	// compactRangeDays is the widest same-year range rendered as MMDD-MMDD.
	compactRangeDays = 90
	// truncHashLen is the number of hex chars replacing an overlong tail.
	truncHashLen = 8
	// maxTokenLength bounds the source, type and value tokens.
	maxTokenLength = 20
	// maxRawDateLength bounds the degraded date token; longer pairs are
	// replaced by "raw" plus a digest.
	maxRawDateLength = 21
)

// MarketZone is the calendar zone promotion dates are rendered in. Dates are
// parsed as UTC midnight and read back in this zone (UTC-3, no DST), which is
// why "2025-04-26" renders as 0425.
var MarketZone = time.FixedZone("ART", -3*60*60)

// dateLayouts are tried in order when parsing validFrom/validUntil.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// BuildKey assembles the key of d. A collisionIndex > 0 is appended as a
// final suffix; only the collision resolver passes one.
//
// BuildKey never fails: malformed dates fall back to the full-date token
// built from the raw strings.
func BuildKey(d domain.Discount, collisionIndex int) string {
	parts := make([]string, 0, 8)
	parts = append(parts, sourceToken(d.Source), discountToken(d.Discount), dateRangeToken(d.ValidFrom, d.ValidUntil))
	parts = appendDiscriminators(parts, d)
	return assemble(parts, 3, collisionIndex)
}

// BuildDatelessKey is BuildKey without the date-range part and without a
// collision index. Two discounts that differ only in their validity window
// share a dateless key.
func BuildDatelessKey(d domain.Discount) string {
	parts := make([]string, 0, 7)
	parts = append(parts, sourceToken(d.Source), discountToken(d.Discount))
	parts = appendDiscriminators(parts, d)
	return assemble(parts, 2, 0)
}

// appendDiscriminators adds the optional parts shared by full and dateless
// keys: weekdays, primary payment method, locations and the additional block.
func appendDiscriminators(parts []string, d domain.Discount) []string {
	if n := distinctWeekdays(d.Weekdays); n > 0 && n < 7 {
		parts = append(parts, NormalizeWeekdaySet(d.Weekdays))
	}

	if pm := d.PrimaryPaymentMethod(); pm != "" {
		if tok, ok := NormalizePaymentMethod(pm); ok {
			parts = append(parts, tok)
		}
	}

	if loc := NormalizeLocationSet(d.Where); loc != "" {
		parts = append(parts, loc)
	}

	if extra := additionalToken(d); extra != "" {
		parts = append(parts, extra)
	}
	return parts
}

// assemble joins parts, appends the collision index and applies the length
// guard, keeping the first keep parts readable. The result never exceeds
// MaxKeyLength.
func assemble(parts []string, keep, collisionIndex int) string {
	suffix := ""
	if collisionIndex > 0 {
		suffix = "-" + strconv.Itoa(collisionIndex)
	}

	full := sanitize(strings.Join(parts, "-")) + suffix
	if len(full) <= MaxKeyLength {
		return full
	}

	key := full
	if len(parts) > keep {
		tail := strings.Join(parts[keep:], "-") + suffix
		key = sanitize(strings.Join(parts[:keep], "-")) + "-" + shortHash(tail, truncHashLen)
	}
	if len(key) > MaxKeyLength {
		head := strings.TrimRight(key[:MaxKeyLength-truncHashLen-1], "-")
		key = head + "-" + shortHash(full, truncHashLen)
	}
	return key
}

func sourceToken(source string) string {
	if s := alnum(source); s != "" {
		return boundToken(s)
	}
	return "unknown"
}

// boundToken caps s at maxTokenLength, replacing the end with a digest of
// the whole token.
func boundToken(s string) string {
	if len(s) <= maxTokenLength {
		return s
	}
	return s[:maxTokenLength-truncHashLen] + shortHash(s, truncHashLen)
}

// discountToken renders "<type without whitespace>-<value>", e.g.
// "cuotassinintereses-12".
func discountToken(v domain.DiscountValue) string {
	t := boundToken(alnum(string(v.Type)))
	if t == "" {
		t = "unknown"
	}
	return t + "-" + boundToken(formatNumber(v.Value))
}

// formatNumber renders integral values without decimals and uses "p" as the
// decimal mark otherwise (12.5 -> "12p5"), keeping keys inside [a-z0-9-].
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return strings.NewReplacer(".", "p", "-", "n").Replace(s)
}

// dateRangeToken renders MMDD-MMDD when both dates fall in the same year and
// are at most 90 days apart, and YYYY-MM-DD-YYYY-MM-DD otherwise.
func dateRangeToken(from, until string) string {
	f, errF := parseDate(from)
	u, errU := parseDate(until)
	if errF != nil || errU != nil {
		return rawDatePair(from, until)
	}

	lf, lu := f.In(MarketZone), u.In(MarketZone)
	days := u.Sub(f).Hours() / 24
	if lf.Year() == lu.Year() && days <= compactRangeDays {
		return fmt.Sprintf("%02d%02d-%02d%02d", int(lf.Month()), lf.Day(), int(lu.Month()), lu.Day())
	}
	return f.UTC().Format("2006-01-02") + "-" + u.UTC().Format("2006-01-02")
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// rawDatePair is the degraded date token for unparseable input. Pairs longer
// than maxRawDateLength become "raw" plus a digest of both strings.
func rawDatePair(from, until string) string {
	clean := func(s string) string {
		s = sanitize(strings.ToLower(strings.TrimSpace(s)))
		s = strings.Trim(s, "-")
		if s == "" {
			return "nodate"
		}
		return s
	}
	pair := clean(from) + "-" + clean(until)
	if len(pair) <= maxRawDateLength {
		return pair
	}
	return "raw" + shortHash(strings.TrimSpace(from)+"|"+strings.TrimSpace(until), truncHashLen)
}

// additionalToken concatenates, in order: membership, appliesOnlyTo codes,
// "notope", "max<N>", "ex<4 hex>" and, for payment-method discounts only,
// "rs<3 hex>".
func additionalToken(d domain.Discount) string {
	var b strings.Builder

	if len(d.Membership) > 0 {
		m := alnum(d.Membership[0])
		if len(m) > 6 {
			m = m[:6]
		}
		b.WriteString(m)
	}

	if len(d.AppliesOnlyTo) > 0 {
		codes := make([]string, 0, len(d.AppliesOnlyTo))
		for name, on := range d.AppliesOnlyTo {
			if !on {
				continue
			}
			c := alnum(name)
			if len(c) > 3 {
				c = c[:3]
			}
			if c != "" {
				codes = append(codes, c)
			}
		}
		sort.Strings(codes)
		b.WriteString(strings.Join(codes, ""))
	}

	if d.Limits.ExplicitlyHasNoLimit {
		b.WriteString("notope")
	}
	if d.Limits.MaxDiscount != nil {
		b.WriteString("max" + formatNumber(*d.Limits.MaxDiscount))
	}
	if d.ExcludesProducts != nil && *d.ExcludesProducts != "" {
		b.WriteString("ex" + shortHash(strings.ToLower(*d.ExcludesProducts), 4))
	}
	if len(d.PaymentMethods) > 0 && len(d.Restrictions) > 0 {
		b.WriteString("rs" + shortHash(strings.ToLower(strings.Join(d.Restrictions, "|")), 3))
	}
	return b.String()
}

// shortHash returns the first n hex chars of the MD5 digest of s. MD5 is a
// stable fingerprint here, not a security primitive.
func shortHash(s string, n int) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:n]
}

// sanitize lowercases s and drops every byte outside [a-z0-9-].
func sanitize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
