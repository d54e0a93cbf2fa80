package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// Row outcomes used as the outcome label of rowsTotal
const (
	OutcomeMatched  = "matched"
	OutcomeSkipped  = "skipped"
	OutcomeNotFound = "not_found"
)

var (
	// rowsTotal counts processed feed rows by competitor and outcome.
	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricematcher_rows_total",
		Help: "Total number of feed rows processed by competitor and outcome",
	}, []string{"competitor", "outcome"})

	// runDuration tracks how long each operation takes.
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricematcher_run_duration_seconds",
		Help:    "Duration of download, compare, update and clean runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
	}, []string{"operation"})

	// runErrors counts runs that ended with a fatal error.
	runErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricematcher_run_errors_total",
		Help: "Total number of runs that failed by operation",
	}, []string{"operation"})

	discountsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricematcher_discounts_cleaned_total",
		Help: "Total number of expired specific prices removed",
	})

	discountsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricematcher_discounts_applied_total",
		Help: "Total number of discounts created or refreshed by competitor",
	}, []string{"competitor"})
)

// ObserveRows adds n rows with the given outcome
func ObserveRows(competitor, outcome string, n int) {
	if n > 0 {
		rowsTotal.WithLabelValues(competitor, outcome).Add(float64(n))
	}
}

// ObserveRun records the duration of a finished run
func ObserveRun(op types.OperationType, d time.Duration) {
	runDuration.WithLabelValues(string(op)).Observe(d.Seconds())
}

// RunFailed counts a run that aborted
func RunFailed(op types.OperationType) {
	runErrors.WithLabelValues(string(op)).Inc()
}

// DiscountsCleaned counts removed specific prices
func DiscountsCleaned(n int) {
	if n > 0 {
		discountsCleaned.Add(float64(n))
	}
}

// DiscountApplied counts one applied discount
func DiscountApplied(competitor string) {
	discountsApplied.WithLabelValues(competitor).Inc()
}
