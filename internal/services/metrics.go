package services

import "github.com/prometheus/client_golang/prometheus"

var (
	keysBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_keys_built_total",
		Help: "Total number of discount keys generated.",
	})

	keyCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_key_collisions_total",
		Help: "Keys that needed a collision index suffix.",
	})

	// diffChanges counts reported changes by kind (added, removed, validity).
	diffChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_diff_changes_total",
			Help: "Changes reported by the diff engine.",
		},
		[]string{"kind"},
	)

	// ingests counts snapshot ingests by outcome (stored, duplicate, error).
	ingests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_ingests_total",
			Help: "Snapshot ingests by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(keysBuilt, keyCollisions, diffChanges, ingests)
}

func observeKeys(n, collisions int) {
	keysBuilt.Add(float64(n))
	keyCollisions.Add(float64(collisions))
}

func observeDiff(added, removed, changed int) {
	diffChanges.WithLabelValues("added").Add(float64(added))
	diffChanges.WithLabelValues("removed").Add(float64(removed))
	diffChanges.WithLabelValues("validity").Add(float64(changed))
}
