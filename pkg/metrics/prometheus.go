package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	UploadsProcessed prometheus.Counter
	DutiesCreated    prometheus.Counter
	MonthsRecomputed prometheus.Counter
	ProcessingTime   prometheus.Histogram
	RowWarnings      prometheus.Counter
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		UploadsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_processed_total",
			Help:      "The total number of processed roster uploads",
		}),
		DutiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_duties_created_total",
			Help:      "The total number of flight duties created from rosters",
		}),
		MonthsRecomputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_calculations_recomputed_total",
			Help:      "The total number of monthly salary recomputations",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_processing_time_seconds",
			Help:      "Time taken to process roster uploads",
			Buckets:   prometheus.DefBuckets,
		}),
		RowWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_row_warnings_total",
			Help:      "The total number of row-level warnings during ingestion",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
