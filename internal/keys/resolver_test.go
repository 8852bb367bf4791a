package keys

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

func TestBuildUniqueKeys_DisambiguatesInOrder(t *testing.T) {
	a := cotoWeekend()
	b := cotoWeekend()
	b.Title = "same offer, different page"
	c := cotoWeekend()
	c.Discount.Value = 20
	d := cotoWeekend()
	d.URL = "https://example.com/3"

	got, collisions := BuildUniqueKeysWithStats([]domain.Discount{a, b, c, d})
	assert.Equal(t, []string{
		"coto-porcentaje-15-0425-0426-coto",
		"coto-porcentaje-15-0425-0426-coto-1",
		"coto-porcentaje-20-0425-0426-coto",
		"coto-porcentaje-15-0425-0426-coto-2",
	}, got)
	assert.Equal(t, 2, collisions)
}

func TestBuildUniqueKeys_UniqueAndIdempotent(t *testing.T) {
	batch := make([]domain.Discount, 0, 60)
	for i := 0; i < 20; i++ {
		batch = append(batch, cotoWeekend(), longCarrefour())
		x := cotoWeekend()
		x.Discount.Value = float64(i % 4)
		batch = append(batch, x)
	}

	first := BuildUniqueKeys(batch)
	require.Len(t, first, len(batch))

	seen := make(map[string]struct{}, len(first))
	for _, k := range first {
		assert.Truef(t, IsValidKey(k), "invalid key %q", k)
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, len(batch))

	assert.Equal(t, first, BuildUniqueKeys(batch))
}

func TestBuildUniqueKeys_Empty(t *testing.T) {
	assert.Empty(t, BuildUniqueKeys(nil))
}

func TestBuildDatelessKeys_KeepsDuplicates(t *testing.T) {
	a := cotoWeekend()
	b := cotoWeekend()
	b.ValidFrom, b.ValidUntil = "2025-05-10", "2025-05-11"
	got := BuildDatelessKeys([]domain.Discount{a, b})
	assert.Equal(t, []string{"coto-porcentaje-15-coto", "coto-porcentaje-15-coto"}, got)
}

func ExampleBuildKey() {
	d := domain.Discount{
		Source:     "coto",
		Discount:   domain.DiscountValue{Type: domain.TypePercentage, Value: 15},
		ValidFrom:  "2025-04-26",
		ValidUntil: "2025-04-27",
		Where:      []string{"Coto"},
	}
	fmt.Println(BuildKey(d, 0))
	// Output: coto-porcentaje-15-0425-0426-coto
}
