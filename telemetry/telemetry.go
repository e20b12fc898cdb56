package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowquery_http_requests_total",
			Help: "Total number of HTTP requests received.",
		},
		[]string{"handler", "method", "code"},
	)

	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rowquery_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)

	upstream = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rowquery_upstream_requests_total",
			Help: "Total number of spreadsheet reads, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requests, duration, upstream)
}

// Wrap adds tracing and request metrics to a handler.
func Wrap(name string, next http.Handler) http.Handler {
	h := otelhttp.NewHandler(next, name)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &recorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rw, r)

		requests.WithLabelValues(name, r.Method, strconv.Itoa(rw.status)).Inc()
		duration.WithLabelValues(name, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Upstream records the outcome of a spreadsheet read.
func Upstream(err error) {
	if err != nil {
		upstream.WithLabelValues("error").Inc()
	} else {
		upstream.WithLabelValues("ok").Inc()
	}
}

// Handler serves the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
