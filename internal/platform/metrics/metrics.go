package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hms_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hms_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "path"})

	// PaymentInitiations counts STK push initiation attempts by outcome
	// (accepted, rejected, auth_error, unavailable, not_found).
	PaymentInitiations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hms_payment_initiations_total",
		Help: "STK push initiation attempts by outcome",
	}, []string{"outcome"})

	// PaymentCallbacks counts gateway callbacks by outcome
	// (success, failure, duplicate, unmatched, malformed).
	PaymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hms_payment_callbacks_total",
		Help: "Payment gateway callbacks by outcome",
	}, []string{"outcome"})
)

// HTTP returns middleware that records request counts and latency per route.
func HTTP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			// Use the route pattern, not the raw path, to bound cardinality.
			path := c.Path()
			method := c.Request().Method
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			return err
		}
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
