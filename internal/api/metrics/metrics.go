// Package metrics defines all custom Prometheus metrics for the coffee
// pricing API. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricing"

// PriceUpdatesTotal counts price submissions that completed successfully.
// Label:
//   - coffee_type: the category whose price changed (e.g. "raw")
var PriceUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_updates_total",
		Help:      "Total number of price updates successfully applied.",
	},
	[]string{"coffee_type"},
)

// PriceUpdateErrorsTotal counts price submissions that failed.
// Label:
//   - reason: short failure description (e.g. "insert_failed", "deactivate_failed", "negative_price")
var PriceUpdateErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_update_errors_total",
		Help:      "Total number of price submissions that failed, by reason.",
	},
	[]string{"reason"},
)

// PriceCompensationsTotal counts saga compensations.
// Label:
//   - outcome: "applied" (rollback succeeded) or "failed" (store may hold
//     two active records for a coffee type)
var PriceCompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_compensations_total",
		Help:      "Total number of price-saga compensations, by outcome.",
	},
	[]string{"outcome"},
)

// PriceUpdateDuration measures how long the whole multi-step submission takes.
// Label:
//   - kind: "initial" (first price for a type) or "versioned" (prior record retired)
var PriceUpdateDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "price_update_duration_seconds",
		Help:      "Duration of a price submission from validation to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
