package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_client_requests_total",
			Help: "Total number of requests sent to the recruitment API",
		},
		[]string{"operation", "code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recruitment_client_request_duration_seconds",
			Help:    "Duration of recruitment API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recruitment_client_status_updates_total",
			Help: "Status update attempts by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// CodeLabel is the "code" label value for a finished request; transport
// failures have no status code.
func CodeLabel(statusCode int) string {
	if statusCode == 0 {
		return "transport_error"
	}
	return fmt.Sprintf("%d", statusCode)
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
