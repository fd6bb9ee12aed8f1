package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookstore_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	BookWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_book_writes_total",
		Help: "Book create/update/delete operations that reached the store",
	}, []string{"operation"})

	RelationUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_relation_updates_total",
		Help: "Successful user-book relation updates",
	})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookstore_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})
)
