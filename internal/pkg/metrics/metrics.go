package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "missionplanner",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "missionplanner",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Mission metrics
	GesturesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "gestures_completed_total",
		Help:      "Completed drawing gestures accepted by the core",
	}, []string{"kind"})

	GestureVertices = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "gesture_vertices",
		Help:      "Number of vertices per completed gesture",
		Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
	}, []string{"kind"})

	PolygonInsertions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "polygon_insertions_total",
		Help:      "Staged polygons spliced into a route",
	}, []string{"position"})

	PolygonDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "polygon_decisions_total",
		Help:      "Operator decisions on a staged polygon",
	}, []string{"decision"})

	ModeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "mode_transitions_total",
		Help:      "Draw mode transitions",
	}, []string{"from", "to"})

	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "command_errors_total",
		Help:      "Rejected mission commands by operation and error kind",
	}, []string{"op", "kind"})

	RouteLines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "missionplanner",
		Subsystem: "mission",
		Name:      "route_lines",
		Help:      "Number of route lines in the mission",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "missionplanner",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// c.Path and c.Method alias the reused request buffer; label values
		// outlive the request, so they must be copied.
		path := utils.CopyString(c.Route().Path)
		if path == "" {
			path = utils.CopyString(c.Path())
		}
		method := utils.CopyString(c.Method())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
