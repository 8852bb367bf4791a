package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidKey(t *testing.T) {
	cases := map[string]bool{
		"coto-porcentaje-15-0425-0426-coto": true,
		"abc":                               false, // too short
		strings.Repeat("a", MaxKeyLength):   true,
		strings.Repeat("a", MaxKeyLength+1): false,
		"Coto-porcentaje-15":                false, // uppercase
		"coto_porcentaje_15":                false,
		"coto porcentaje 15":                false,
		"":                                  false,
	}
	for in, want := range cases {
		assert.Equalf(t, want, IsValidKey(in), "IsValidKey(%q)", in)
	}
}

func TestParseKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want ParsedKey
	}{
		{
			name: "compact dates",
			key:  "coto-porcentaje-15-0425-0426-coto",
			want: ParsedKey{Source: "coto", DiscountType: "porcentaje-15", DateRange: "0425-0426", Additional: []string{"coto"}},
		},
		{
			name: "full dates with extras",
			key:  "dia-porcentaje-10-2025-01-01-2025-12-31-mp-notope-2",
			want: ParsedKey{Source: "dia", DiscountType: "porcentaje-10", DateRange: "2025-01-01-2025-12-31", Additional: []string{"mp", "notope", "2"}},
		},
		{
			name: "truncated",
			key:  "carrefour-porcentaje-25-0630-0730-858b200d",
			want: ParsedKey{Source: "carrefour", DiscountType: "porcentaje-25", DateRange: "0630-0730", Additional: []string{"858b200d"}},
		},
		{
			name: "decimal value",
			key:  "dia-porcentaje-12p5-0101-0102",
			want: ParsedKey{Source: "dia", DiscountType: "porcentaje-12p5", DateRange: "0101-0102", Additional: []string{}},
		},
		{
			name: "short",
			key:  "coto-x",
			want: ParsedKey{Source: "coto", DiscountType: "x", Additional: []string{}},
		},
		{
			name: "empty",
			key:  "",
			want: ParsedKey{Additional: []string{}},
		},
		{
			name: "malformed",
			key:  "Not A Key!",
			want: ParsedKey{Additional: []string{}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseKey(tc.key))
		})
	}
}

func TestParseKey_RoundTripsBuiltKeys(t *testing.T) {
	for _, d := range []struct {
		key       string
		dateRange string
	}{
		{BuildKey(cotoWeekend(), 0), "0425-0426"},
		{BuildKey(longCarrefour(), 3), "0630-0730"},
	} {
		p := ParseKey(d.key)
		assert.Equal(t, d.dateRange, p.DateRange)
		assert.Equal(t, d.dateRange, DateRangeOf(d.key))
	}
}
