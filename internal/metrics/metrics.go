package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the site's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	marketPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvot",
			Subsystem: "market",
			Name:      "polls_total",
			Help:      "Market refreshes by outcome (fresh, fallback, stale).",
		},
		[]string{"outcome"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvot",
			Subsystem: "wallet",
			Name:      "operations_total",
			Help:      "Simulated wallet operations by kind and result.",
		},
		[]string{"kind", "result"},
	)

	notices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvot",
			Subsystem: "ui",
			Name:      "notices_total",
			Help:      "Transient notices raised, by kind.",
		},
		[]string{"kind"},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "volvot",
			Subsystem: "relay",
			Name:      "stream_clients",
			Help:      "Connected SSE and WebSocket clients.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method and status.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	Registry.MustRegister(
		marketPolls,
		operations,
		notices,
		streamClients,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// MarketPoll records one market refresh outcome.
func MarketPoll(outcome string) { marketPolls.WithLabelValues(outcome).Inc() }

// Operation records a simulated wallet operation (connect, swap, stake, ...).
func Operation(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operations.WithLabelValues(kind, result).Inc()
}

// Notice records a raised notice.
func Notice(kind string) { notices.WithLabelValues(kind).Inc() }

// StreamOpened and StreamClosed track connected event-stream clients.
func StreamOpened() { streamClients.Inc() }
func StreamClosed() { streamClients.Dec() }

// HTTPRequest records a served request.
func HTTPRequest(method, status string) { httpRequests.WithLabelValues(method, status).Inc() }
