// Package metrics defines Prometheus metrics for the Nexway Connect client
// and the local mock server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nexway"

// Outbound API metrics, recorded by the generic executor.
var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of HTTP exchanges with the Nexway API.",
	}, []string{"method", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of HTTP exchanges with the Nexway API in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// Token lifecycle metrics.
var (
	TokenGrantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_grants_total",
		Help:      "Total number of token grant requests by grant type and result.",
	}, []string{"grant_type", "result"})

	TokenInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_invalidations_total",
		Help:      "Total number of token invalidations by reset call result.",
	}, []string{"result"})
)

// Domain operation metrics.
var (
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of domain operations by name and result.",
	}, []string{"operation", "result"})
)

// Mock server metrics.
var (
	MockHTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mock",
		Name:      "http_requests_total",
		Help:      "Total number of requests served by the mock server.",
	}, []string{"method", "path", "status"})

	MockHTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mock",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of requests served by the mock server in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Result maps an error to a result label value.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
