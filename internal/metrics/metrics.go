package metrics

import (
	"cmp"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zenazn/goji/web/mutil"
)

const namespace = "geo_feedback"

// Collectors метрики сервиса. Реализует Recorder сервисов рынков и индексов.
type Collectors struct {
	nearbySearches  *prometheus.CounterVec
	nearbyCache     *prometheus.CounterVec
	commentOutcomes *prometheus.CounterVec
	postalLookups   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		nearbySearches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nearby_searches_total",
			Help:      "Radius searches by index source.",
		}, []string{"source"}),
		nearbyCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nearby_cache_requests_total",
			Help:      "Nearby result cache lookups.",
		}, []string{"result"}),
		commentOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_outcomes_total",
			Help:      "Comment resolution outcomes.",
		}, []string{"outcome", "reason"}),
		postalLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postal_lookups_total",
			Help:      "Postal directory lookups by kind.",
		}, []string{"kind"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (c *Collectors) NearbySearch(source string) {
	c.nearbySearches.WithLabelValues(source).Inc()
}

func (c *Collectors) NearbyCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.nearbyCache.WithLabelValues(result).Inc()
}

func (c *Collectors) CommentOutcome(outcome, reason string) {
	c.commentOutcomes.WithLabelValues(outcome, cmp.Or(reason, "none")).Inc()
}

func (c *Collectors) PostalLookup(kind string) {
	c.postalLookups.WithLabelValues(kind).Inc()
}

// RequestDuration middleware для chi. Маршрут берётся из шаблона,
// чтобы ID в пути не раздували число серий.
func (c *Collectors) RequestDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := mutil.WrapWriter(w)

		next.ServeHTTP(lw, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		c.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(cmp.Or(lw.Status(), http.StatusOK))).
			Observe(time.Since(start).Seconds())
	})
}
