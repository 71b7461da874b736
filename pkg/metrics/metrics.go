package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DocumentSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duonest_document_saves_total",
			Help: "Whole-document saves by result",
		},
		[]string{"result"},
	)

	SocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duonest_socket_clients",
			Help: "Connected websocket clients",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestsTotal,
		RequestDuration,
		DocumentSaves,
		SocketClients,
	)
}
