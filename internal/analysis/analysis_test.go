package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

func disc(source string, value float64, title string) domain.Discount {
	return domain.Discount{
		Source:     source,
		Discount:   domain.DiscountValue{Type: domain.TypePercentage, Value: value},
		ValidFrom:  "2025-04-26",
		ValidUntil: "2025-04-27",
		Title:      title,
	}
}

func TestUniqueness(t *testing.T) {
	batch := []domain.Discount{
		disc("coto", 15, "a"),
		disc("coto", 15, "b"),
		disc("coto", 20, "c"),
		disc("dia", 10, "d"),
		disc("coto", 15, "e"),
		disc("dia", 10, "f"),
	}
	r := Uniqueness(batch)

	assert.Equal(t, 6, r.Total)
	assert.Equal(t, 3, r.UniqueBaseKeys)
	assert.InDelta(t, 0.5, r.UniquenessRate, 1e-9)

	require.Len(t, r.Duplicates, 2)
	assert.Equal(t, DuplicateGroup{
		Key:       "coto-porcentaje-15-0425-0426",
		Positions: []int{0, 1, 4},
		Titles:    []string{"a", "b", "e"},
	}, r.Duplicates[0])
	assert.Equal(t, []int{3, 5}, r.Duplicates[1].Positions)

	assert.Equal(t, []SourceBreakdown{
		{Source: "coto", Total: 4, UniqueBaseKeys: 2, UniquenessRate: 0.5},
		{Source: "dia", Total: 2, UniqueBaseKeys: 1, UniquenessRate: 0.5},
	}, r.BySource)
}

func TestUniqueness_Empty(t *testing.T) {
	r := Uniqueness(nil)
	assert.Equal(t, 0, r.Total)
	assert.Equal(t, 1.0, r.UniquenessRate)
	assert.Empty(t, r.Duplicates)
	assert.Empty(t, r.BySource)
}

func TestKeyLengths(t *testing.T) {
	s := KeyLengths([]string{
		"coto-porcentaje-15-0425-0426",             // 28
		"coto-porcentaje-15-0425-0426-coto",        // 33
		"carrefour-porcentaje-25-0630-0730-858b200d", // 42, hashed
	})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 28, s.Min)
	assert.Equal(t, 42, s.Max)
	assert.InDelta(t, 103.0/3.0, s.Mean, 1e-9)
	assert.Equal(t, 42, s.P95)
	assert.Equal(t, 0, s.OverLimit)
	assert.Equal(t, 1, s.Hashed)

	assert.Equal(t, LengthStats{}, KeyLengths(nil))
}

func TestStability(t *testing.T) {
	r := Stability([][]string{
		{"a", "b", "c", "d"},
		{"a", "b", "c", "e"},
		{"a", "b", "c", "e"},
	})
	require.Len(t, r.Steps, 2)
	assert.Equal(t, 3, r.Runs)
	assert.Equal(t, StabilityStep{Kept: 3, Added: 1, Removed: 1, Churn: 2.0 / 5.0, Stability: 0.75}, r.Steps[0])
	assert.Equal(t, StabilityStep{Kept: 4, Churn: 0, Stability: 1}, r.Steps[1])
	assert.InDelta(t, 0.2, r.AvgChurn, 1e-9)
	assert.InDelta(t, 0.875, r.AvgStability, 1e-9)
}

func TestStability_TooFewRuns(t *testing.T) {
	r := Stability([][]string{{"a"}})
	assert.Equal(t, 1, r.Runs)
	assert.Empty(t, r.Steps)
	assert.Zero(t, r.AvgChurn)
}

func TestAnalyze(t *testing.T) {
	batch := []domain.Discount{disc("coto", 15, "a"), disc("coto", 15, "b")}
	r := Analyze(batch)
	assert.Equal(t, []string{"coto-porcentaje-15-0425-0426", "coto-porcentaje-15-0425-0426-1"}, r.Keys)
	assert.Equal(t, 1, r.Uniqueness.UniqueBaseKeys)
	assert.Equal(t, 2, r.Lengths.Count)
}
