package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightsearch_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightsearch_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	GRPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightsearch_grpc_requests_total",
		Help: "gRPC requests by method and status code.",
	}, []string{"method", "code"})

	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightsearch_ingest_runs_total",
		Help: "Mock ingestion runs by result.",
	}, []string{"result"})

	FlightsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightsearch_flights_ingested_total",
		Help: "Flights created by the mock ingestion job.",
	})
)
