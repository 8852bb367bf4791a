package keys

import "github.com/tbourn/go-promo-backend/internal/domain"

// BuildUniqueKeys returns one key per discount, in input order, with no
// duplicates inside the batch. The first discount producing a base key keeps
// it unchanged; the Nth repeat (N >= 1) is rebuilt with N as its collision
// index.
func BuildUniqueKeys(discounts []domain.Discount) []string {
	out, _ := BuildUniqueKeysWithStats(discounts)
	return out
}

// BuildUniqueKeysWithStats is BuildUniqueKeys that also reports how many keys
// needed a collision index.
func BuildUniqueKeysWithStats(discounts []domain.Discount) (keys []string, collisions int) {
	keys = make([]string, len(discounts))
	seen := make(map[string]int, len(discounts))

	for i, d := range discounts {
		base := BuildKey(d, 0)
		n := seen[base]
		seen[base] = n + 1
		if n == 0 {
			keys[i] = base
			continue
		}
		keys[i] = BuildKey(d, n)
		collisions++
	}
	return keys, collisions
}

// BuildDatelessKeys returns the dateless key of every discount, in input
// order. Unlike BuildUniqueKeys the result may contain duplicates.
func BuildDatelessKeys(discounts []domain.Discount) []string {
	out := make([]string, len(discounts))
	for i, d := range discounts {
		out[i] = BuildDatelessKey(d)
	}
	return out
}
