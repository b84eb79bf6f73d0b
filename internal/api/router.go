// Package api exposes analyses, settlement, the markets engine and the event
// stream over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/health"
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/metrics"
	"github.com/yourusername/matchday-consensus/internal/service"
	"github.com/yourusername/matchday-consensus/internal/tracing"
)

// Deps are the components served by the router. Health, Stream and Metrics
// are optional.
type Deps struct {
	ServiceName string
	Analyses    *service.AnalysisService
	Settlements *service.SettlementService
	Performance *service.PerformanceService
	Engine      *markets.Engine
	Stream      http.Handler
	Health      *health.Server
	Server      config.ServerConfig
	Metrics     config.MetricsConfig
	Logger      *logrus.Logger
}

// NewRouter builds the HTTP routes
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		analyses:    d.Analyses,
		settlements: d.Settlements,
		performance: d.Performance,
		engine:      d.Engine,
		logger:      d.Logger,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(tracing.Middleware(d.ServiceName))

	origins := d.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if d.Health != nil {
		r.Get("/health", d.Health.Health)
		r.Get("/ready", d.Health.Ready)
		r.Get("/live", d.Health.Live)
	}

	if d.Metrics.Enabled {
		path := d.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, metrics.Handler())
	}

	if d.Stream != nil {
		r.Handle("/ws", d.Stream)
	}

	timeout := time.Duration(d.Server.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(timeout))

		r.Post("/analyses", h.CreateAnalysis)
		r.Get("/analyses/{fixtureID}", h.GetAnalysis)
		r.Post("/analyses/{fixtureID}/settlement", h.SettleAnalysis)
		r.Post("/markets", h.Markets)
		r.Get("/performance", h.Performance)
	})

	return r
}

// requestLogger logs one line per request
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimiddleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
