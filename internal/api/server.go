// Package api implements the read-mostly HTTP query and streaming surface
// over the risk cache: point lookups, threshold/advisor scans, a metrics
// summary, a portfolio-update producer endpoint, and an SSE feed of the
// egress topic.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/DimaJoyti/riskpulse/internal/bus"
	"github.com/DimaJoyti/riskpulse/internal/cache"
	"github.com/DimaJoyti/riskpulse/internal/config"
	"github.com/DimaJoyti/riskpulse/internal/telemetry"
)

// Server is the HTTP query/streaming API.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	cache      *cache.Cache
	producer   *bus.Producer
	httpServer *http.Server
	startTime  time.Time
}

// New builds a Server. The producer is used only for POST /portfolio/update.
func New(cfg *config.Config, logger *zap.Logger, c *cache.Cache, producer *bus.Producer) *Server {
	s := &Server{cfg: cfg, logger: logger, cache: c, producer: producer, startTime: time.Now()}

	router := mux.NewRouter()
	s.registerRoutes(router)

	handler := s.withMiddleware(router)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return s
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/risk/{portfolio_id}", s.handleGetRisk).Methods(http.MethodGet)
	r.HandleFunc("/portfolios/at-risk", s.handleAtRisk).Methods(http.MethodGet)
	r.HandleFunc("/advisor/{advisor_id}/portfolios", s.handleAdvisorPortfolios).Methods(http.MethodGet)
	r.HandleFunc("/metrics/summary", s.handleMetricsSummary).Methods(http.MethodGet)
	r.HandleFunc("/portfolio/update", s.handlePortfolioUpdate).Methods(http.MethodPost)
	r.HandleFunc("/stream/risk-updates", s.handleStreamRiskUpdates).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) withMiddleware(h http.Handler) http.Handler {
	h = s.recoveryMiddleware(h)
	h = s.loggingMiddleware(h)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		statusClass := fmt.Sprintf("%dxx", rec.status/100)
		telemetry.HTTPRequestsTotal.WithLabelValues(r.URL.Path, statusClass).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(r.URL.Path).Observe(float64(elapsed.Microseconds()) / 1000.0)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Start begins serving HTTP requests; it returns once the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.HTTP.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP server, waiting up to the given
// context's deadline for in-flight requests to finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
