//nolint:gochecknoglobals
package dispatch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "towops",
		Name:      "recommendations_total",
		Help:      "The total number of unit recommendations",
	}, []string{"mode", "result"})

	recommendDistanceMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "towops",
		Name:      "recommendation_distance_km",
		Help:      "Distance from the call to the closest recommended unit.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
	})

	assignmentsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "towops",
		Name:      "assignments_total",
		Help:      "The total number of assign operations",
	}, []string{"result"})

	trackingUpdatesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "towops",
		Name:      "tracking_updates_total",
		Help:      "The total number of tracking updates",
	}, []string{"status", "result"})

	activeAssignmentsMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "towops",
		Name:      "active_assignments",
		Help:      "Assignments not yet complete",
	})

	knownMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "towops",
		Name:      "known_records",
		Help:      "The number of calls and units held in memory",
	}, []string{"kind"})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrFailedPrecondition):
		return "precondition"
	default:
		return "error"
	}
}
