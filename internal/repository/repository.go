// Package repository is the PostgreSQL data access layer. Each repository
// wraps the shared pgx pool and records per-operation metrics.
package repository

import (
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
)

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DatabaseRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DatabaseRequestTotal.WithLabelValues(operation, status).Inc()
}

// nilIfEmpty returns nil if string is empty, otherwise returns pointer to string
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
