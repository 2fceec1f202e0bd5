package metrics

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// EnvLatencyBuckets overrides the request latency buckets, formatted like "100,200,300,400".
	EnvLatencyBuckets     = "REPORT_EXPORTER_LATENCY_BUCKETS"
	RequestsCollectorName = "http_requests_total"
	LatencyCollectorName  = "http_request_duration_milliseconds"
)

// export requests render a browser page, so the buckets reach well beyond a regular API call
var defaultLatencyBuckets = []float64{100, 500, 1000, 5000, 15000, 60000}

// Middleware counts requests and observes their latency partitioned by status code,
// method and route pattern.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func latencyBuckets() []float64 {
	conf, ok := os.LookupEnv(EnvLatencyBuckets)
	if !ok {
		return defaultLatencyBuckets
	}

	var buckets []float64
	for _, v := range strings.Split(conf, ",") {
		f64v, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			zap.S().Named("metrics").Warnw("ignoring malformed latency buckets", EnvLatencyBuckets, conf, "error", err)
			return defaultLatencyBuckets
		}
		buckets = append(buckets, f64v)
	}
	return buckets
}

// NewMiddleware returns a request metrics middleware for the named server.
func NewMiddleware(name string) *Middleware {
	constLabels := prometheus.Labels{"service": name}

	return &Middleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   reportExporter,
			Name:        RequestsCollectorName,
			Help:        "Number of HTTP requests partitioned by status code, method and HTTP path.",
			ConstLabels: constLabels,
		}, []string{"code", "method", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   reportExporter,
			Name:        LatencyCollectorName,
			Help:        "Time spent on the request partitioned by status code, method and HTTP path.",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets(),
		}, []string{"code", "method", "path"}),
	}
}

// Handler returns a handler for the middleware pattern.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return
		}
		code := strconv.Itoa(ww.Status())
		pattern := rctx.RoutePattern()
		m.requests.WithLabelValues(code, r.Method, pattern).Inc()
		m.latency.WithLabelValues(code, r.Method, pattern).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// Collectors returns the collectors for a custom registry.
func (m *Middleware) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency}
}

// Register registers the collectors with reg, reusing the ones already registered
// under the same name.
func (m *Middleware) Register(reg prometheus.Registerer) error {
	for i, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
			switch i {
			case 0:
				m.requests = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				m.latency = are.ExistingCollector.(*prometheus.HistogramVec)
			}
		}
	}
	return nil
}
