package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HoldsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donation_holds_created_total",
		Help: "Total number of holds successfully placed.",
	})

	HoldConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donation_hold_conflicts_total",
		Help: "Total number of hold requests rejected because the item was already held.",
	})

	HoldsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donation_holds_expired_total",
		Help: "Total number of stale holds flipped to expired on observation.",
	})

	HoldsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donation_holds_cancelled_total",
		Help: "Total number of holds cancelled by their owner.",
	})

	PickupsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "donation_pickups_completed_total",
		Help: "Total number of pickups confirmed and recorded.",
	})

	CatalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_catalog_errors_total",
		Help: "Total number of failed catalog calls by operation.",
	},
		[]string{"operation"},
	)
)
