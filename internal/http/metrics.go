package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// Gateway labels.
const (
	GatewayAPI       = "api"
	GatewayTelemetry = "telemetry"
)

// Metrics holds the Prometheus collectors shared by the gateways of one
// client. Create it once per registerer; registering twice panics.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
	rejected    prometheus.Counter
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubg",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests sent by the gateway, by outcome.",
		}, []string{"gateway", "code", "kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pubg",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"gateway"}),
		cacheLookup: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubg",
			Subsystem: "telemetry",
			Name:      "cache_lookups_total",
			Help:      "Telemetry cache lookups, by result.",
		}, []string{"result"}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pubg",
			Subsystem: "telemetry",
			Name:      "rejected_urls_total",
			Help:      "Telemetry URLs refused by the host allow-list.",
		}),
	}
}

// observe records one finished request.
func (m *Metrics) observe(gateway string, resp *Response, elapsed time.Duration) {
	if m == nil {
		return
	}

	code := "none"
	if resp.StatusCode != 0 {
		code = strconv.Itoa(resp.StatusCode)
	}

	m.requests.WithLabelValues(gateway, code, errorKind(resp.Error)).Inc()
	m.duration.WithLabelValues(gateway).Observe(elapsed.Seconds())
}

func (m *Metrics) cacheResult(hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}

	m.cacheLookup.WithLabelValues(result).Inc()
}

func (m *Metrics) rejectURL() {
	if m == nil {
		return
	}

	m.rejected.Inc()
}

// errorKind is the metric label for err.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pubg.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, pubg.ErrOldTelemetry):
		return "old_telemetry"
	case errors.Is(err, pubg.ErrNotFound):
		return "not_found"
	case errors.Is(err, pubg.ErrInvalidContentType):
		return "invalid_content_type"
	case errors.Is(err, pubg.ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, pubg.ErrConnection):
		return "connection"
	default:
		return "api"
	}
}
