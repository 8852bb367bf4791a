// Package analysis provides read-only diagnostics over generated keys:
// uniqueness of base keys within a batch, duplicate groups, per-source
// breakdowns, key length statistics and run-to-run stability. None of it
// affects key generation; it exists to tune how well keys discriminate.
package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/keys"
)

// DuplicateGroup lists the batch positions that share one base key.
type DuplicateGroup struct {
	Key       string   `json:"key"`
	Positions []int    `json:"positions"`
	Titles    []string `json:"titles"`
}

// SourceBreakdown is the uniqueness of base keys for one source.
type SourceBreakdown struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	UniqueBaseKeys int     `json:"unique_base_keys"`
	UniquenessRate float64 `json:"uniqueness_rate"`
}

// UniquenessReport describes how well base keys (before collision
// resolution) separate the discounts of a batch.
type UniquenessReport struct {
	Total          int               `json:"total"`
	UniqueBaseKeys int               `json:"unique_base_keys"`
	UniquenessRate float64           `json:"uniqueness_rate"`
	Duplicates     []DuplicateGroup  `json:"duplicates"`
	BySource       []SourceBreakdown `json:"by_source"`
}

// LengthStats summarizes key lengths. Hashed counts keys whose tail was
// replaced by a digest.
type LengthStats struct {
	Count     int     `json:"count"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Mean      float64 `json:"mean"`
	P95       int     `json:"p95"`
	OverLimit int     `json:"over_limit"`
	Hashed    int     `json:"hashed"`
}

// StabilityStep compares one run's key set with the run before it.
type StabilityStep struct {
	Kept      int     `json:"kept"`
	Added     int     `json:"added"`
	Removed   int     `json:"removed"`
	Churn     float64 `json:"churn"`
	Stability float64 `json:"stability"`
}

// StabilityReport aggregates StabilitySteps over a run history.
type StabilityReport struct {
	Runs         int             `json:"runs"`
	Steps        []StabilityStep `json:"steps"`
	AvgChurn     float64         `json:"avg_churn"`
	AvgStability float64         `json:"avg_stability"`
}

// Report bundles the batch-level diagnostics.
type Report struct {
	Keys       []string         `json:"keys"`
	Uniqueness UniquenessReport `json:"uniqueness"`
	Lengths    LengthStats      `json:"lengths"`
}

// Analyze computes the unique keys of discounts and the diagnostics over
// them.
func Analyze(discounts []domain.Discount) Report {
	ks := keys.BuildUniqueKeys(discounts)
	return Report{
		Keys:       ks,
		Uniqueness: Uniqueness(discounts),
		Lengths:    KeyLengths(ks),
	}
}

// Uniqueness groups discounts by base key. An empty batch has a rate of 1.
func Uniqueness(discounts []domain.Discount) UniquenessReport {
	type group struct {
		positions []int
	}
	groups := make(map[string]*group, len(discounts))
	order := make([]string, 0, len(discounts))

	type srcAcc struct {
		total int
		keys  map[string]struct{}
	}
	bySource := make(map[string]*srcAcc)

	for i, d := range discounts {
		k := keys.BuildKey(d, 0)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.positions = append(g.positions, i)

		src := strings.ToLower(strings.TrimSpace(d.Source))
		acc, ok := bySource[src]
		if !ok {
			acc = &srcAcc{keys: make(map[string]struct{})}
			bySource[src] = acc
		}
		acc.total++
		acc.keys[k] = struct{}{}
	}

	r := UniquenessReport{
		Total:          len(discounts),
		UniqueBaseKeys: len(groups),
		UniquenessRate: rate(len(groups), len(discounts)),
		Duplicates:     []DuplicateGroup{},
		BySource:       make([]SourceBreakdown, 0, len(bySource)),
	}

	for _, k := range order {
		g := groups[k]
		if len(g.positions) < 2 {
			continue
		}
		titles := make([]string, len(g.positions))
		for j, p := range g.positions {
			titles[j] = discounts[p].Title
		}
		r.Duplicates = append(r.Duplicates, DuplicateGroup{Key: k, Positions: g.positions, Titles: titles})
	}
	sort.SliceStable(r.Duplicates, func(a, b int) bool {
		if len(r.Duplicates[a].Positions) != len(r.Duplicates[b].Positions) {
			return len(r.Duplicates[a].Positions) > len(r.Duplicates[b].Positions)
		}
		return r.Duplicates[a].Key < r.Duplicates[b].Key
	})

	for src, acc := range bySource {
		r.BySource = append(r.BySource, SourceBreakdown{
			Source:         src,
			Total:          acc.total,
			UniqueBaseKeys: len(acc.keys),
			UniquenessRate: rate(len(acc.keys), acc.total),
		})
	}
	sort.Slice(r.BySource, func(a, b int) bool { return r.BySource[a].Source < r.BySource[b].Source })
	return r
}

var hashTailRE = regexp.MustCompile(`^[a-f0-9]{8}$`)

// KeyLengths summarizes the lengths of ks. P95 uses the nearest-rank method.
func KeyLengths(ks []string) LengthStats {
	s := LengthStats{Count: len(ks)}
	if len(ks) == 0 {
		return s
	}

	lens := make([]int, len(ks))
	total := 0
	for i, k := range ks {
		n := len(k)
		lens[i] = n
		total += n
		if n > keys.MaxKeyLength {
			s.OverLimit++
		}
		if p := keys.ParseKey(k); len(p.Additional) == 1 && hashTailRE.MatchString(p.Additional[0]) {
			s.Hashed++
		}
	}
	sort.Ints(lens)

	s.Min = lens[0]
	s.Max = lens[len(lens)-1]
	s.Mean = float64(total) / float64(len(lens))
	rank := int(math.Ceil(0.95*float64(len(lens)))) - 1
	s.P95 = lens[max(rank, 0)]
	return s
}

// Stability compares consecutive key sets in runs (oldest first). Churn is
// (added+removed)/|union| and stability is kept/|previous|.
func Stability(runs [][]string) StabilityReport {
	r := StabilityReport{Runs: len(runs), Steps: []StabilityStep{}}
	if len(runs) < 2 {
		return r
	}

	for i := 1; i < len(runs); i++ {
		prev := toSet(runs[i-1])
		cur := toSet(runs[i])

		var st StabilityStep
		for k := range cur {
			if _, ok := prev[k]; ok {
				st.Kept++
			} else {
				st.Added++
			}
		}
		st.Removed = len(prev) - st.Kept

		if union := st.Kept + st.Added + st.Removed; union > 0 {
			st.Churn = float64(st.Added+st.Removed) / float64(union)
		}
		switch {
		case len(prev) > 0:
			st.Stability = float64(st.Kept) / float64(len(prev))
		case len(cur) == 0:
			st.Stability = 1
		}

		r.Steps = append(r.Steps, st)
		r.AvgChurn += st.Churn
		r.AvgStability += st.Stability
	}
	r.AvgChurn /= float64(len(r.Steps))
	r.AvgStability /= float64(len(r.Steps))
	return r
}

func toSet(ks []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ks))
	for _, k := range ks {
		m[k] = struct{}{}
	}
	return m
}

func rate(part, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(part) / float64(total)
}
