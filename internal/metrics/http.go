package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP agrupa las métricas de los endpoints de operación (/metrics, /readyz).
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Inflight *prometheus.GaugeVec
}

func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	req, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docuser_http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"}))
	if err != nil {
		return nil, err
	}
	dur, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docuser_http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"}))
	if err != nil {
		return nil, err
	}
	inflight, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docuser_http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"}))
	if err != nil {
		return nil, err
	}
	return &HTTP{Requests: req, Duration: dur, Inflight: inflight}, nil
}

// Middleware instrumenta requests con contador, latencia e inflight.
// El label path es el patrón de chi, así no explota la cardinalidad.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// el patrón recién se conoce después de rutear
		next.ServeHTTP(ww, r)

		path := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.Requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	})
}

// TrackInflight se monta por ruta (r.With) para que el patrón ya esté resuelto.
func (m *HTTP) TrackInflight(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePattern(r)
		g := m.Inflight.WithLabelValues(strings.ToUpper(r.Method), path)
		g.Inc()
		defer g.Dec()
		next.ServeHTTP(w, r)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
