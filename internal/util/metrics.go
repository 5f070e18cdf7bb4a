package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edit_sessions_opened_total",
		Help: "Total number of edit sessions opened",
	})

	SessionsDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edit_sessions_discarded_total",
		Help: "Total number of edit sessions abandoned without commit",
	})

	EditSessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edit_sessions_open",
		Help: "Number of edit sessions currently open",
	})

	AmendmentsCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amendments_committed_total",
		Help: "Total number of order amendments committed",
	})

	AmendmentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amendments_failed_total",
		Help: "Total number of failed amendment commits",
	}, []string{"reason"})

	AmendmentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amendments_rejected_total",
		Help: "Total number of amendment attempts rejected before commit",
	}, []string{"reason"})

	CommitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amendment_commit_latency_seconds",
		Help:    "Latency of reconciliation commits",
		Buckets: prometheus.DefBuckets,
	})

	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of normalized catalog cache hits",
	})

	CatalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of normalized catalog cache misses",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
