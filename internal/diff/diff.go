// Package diff compares two batches of discounts for the same merchant and
// classifies what changed: offers added, offers removed, and offers whose
// validity window moved.
//
// Comparison runs on two keys per discount: the unique full key (see
// keys.BuildUniqueKeys) and the coarser dateless key. Discounts sharing a
// dateless key are "the same offer" modulo dates, so a shifted window is
// reported once as a validity change instead of as one removal plus one
// addition.
//
// Like package keys, diff does no I/O and never logs.
package diff

import (
	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/keys"
)

// ValidityChange pairs an old and a new full key that share a dateless key.
type ValidityChange struct {
	BaseKey    string `json:"baseKey"`
	OldPeriod  string `json:"oldPeriod"`
	NewPeriod  string `json:"newPeriod"`
	FullOldKey string `json:"fullOldKey"`
	FullNewKey string `json:"fullNewKey"`
}

// Result is the outcome of comparing a previous batch with a current one.
// Added and Removed hold full keys; they never contain a key claimed by a
// ValidityChange.
type Result struct {
	Added           []string         `json:"added"`
	Removed         []string         `json:"removed"`
	ValidityChanged []ValidityChange `json:"validityChanged"`
	TotalNew        int              `json:"totalNew"`
	TotalOld        int              `json:"totalOld"`
}

// HasChanges reports whether anything was added, removed or moved.
func (r Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || len(r.ValidityChanged) > 0
}

// batch is a keyed view of one side of the comparison. Groups map a dateless
// key to positions in the batch, in original order; order lists dateless keys
// by first appearance.
type batch struct {
	discounts []domain.Discount
	full      []string
	order     []string
	groups    map[string][]int
}

func newBatch(discounts []domain.Discount) batch {
	b := batch{
		discounts: discounts,
		full:      keys.BuildUniqueKeys(discounts),
		groups:    make(map[string][]int, len(discounts)),
	}
	for i, dl := range keys.BuildDatelessKeys(discounts) {
		if _, ok := b.groups[dl]; !ok {
			b.order = append(b.order, dl)
		}
		b.groups[dl] = append(b.groups[dl], i)
	}
	return b
}

// comparison keeps the positions behind every reported key so the enhanced
// variant can resolve keys back to discounts.
type comparison struct {
	prev, cur batch

	added   []int // positions in cur
	removed []int // positions in prev
	changed []pairing
}

type pairing struct {
	base     string
	old, new int
}

func compare(previous, current []domain.Discount) comparison {
	c := comparison{prev: newBatch(previous), cur: newBatch(current)}

	var trulyAdded, trulyRemoved []int
	for _, dl := range c.cur.order {
		if _, ok := c.prev.groups[dl]; !ok {
			trulyAdded = append(trulyAdded, c.cur.groups[dl]...)
		}
	}
	for _, dl := range c.prev.order {
		if _, ok := c.cur.groups[dl]; !ok {
			trulyRemoved = append(trulyRemoved, c.prev.groups[dl]...)
		}
	}

	// Positional pairing inside shared groups. Leftovers of unequal-length
	// groups are not reported.
	claimed := make(map[string]struct{})
	for _, dl := range c.cur.order {
		olds, ok := c.prev.groups[dl]
		if !ok {
			continue
		}
		news := c.cur.groups[dl]
		n := min(len(olds), len(news))
		for i := 0; i < n; i++ {
			oldKey, newKey := c.prev.full[olds[i]], c.cur.full[news[i]]
			if oldKey == newKey {
				continue
			}
			c.changed = append(c.changed, pairing{base: dl, old: olds[i], new: news[i]})
			claimed[oldKey] = struct{}{}
			claimed[newKey] = struct{}{}
		}
	}

	for _, i := range trulyAdded {
		if _, ok := claimed[c.cur.full[i]]; !ok {
			c.added = append(c.added, i)
		}
	}
	for _, i := range trulyRemoved {
		if _, ok := claimed[c.prev.full[i]]; !ok {
			c.removed = append(c.removed, i)
		}
	}
	return c
}

func (c comparison) result() Result {
	r := Result{
		Added:           make([]string, 0, len(c.added)),
		Removed:         make([]string, 0, len(c.removed)),
		ValidityChanged: make([]ValidityChange, 0, len(c.changed)),
		TotalNew:        len(c.cur.discounts),
		TotalOld:        len(c.prev.discounts),
	}
	for _, i := range c.added {
		r.Added = append(r.Added, c.cur.full[i])
	}
	for _, i := range c.removed {
		r.Removed = append(r.Removed, c.prev.full[i])
	}
	for _, p := range c.changed {
		oldKey, newKey := c.prev.full[p.old], c.cur.full[p.new]
		r.ValidityChanged = append(r.ValidityChanged, ValidityChange{
			BaseKey:    p.base,
			OldPeriod:  keys.DateRangeOf(oldKey),
			NewPeriod:  keys.DateRangeOf(newKey),
			FullOldKey: oldKey,
			FullNewKey: newKey,
		})
	}
	return r
}

// Calculate compares previous with current. A nil or empty previous batch
// (no history yet) reports every current discount as added.
func Calculate(previous, current []domain.Discount) Result {
	return compare(previous, current).result()
}
