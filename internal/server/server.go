package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/server/ratelimit"
	"github.com/mgkim1976-spec/research-based-wm/internal/store"
	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

// Runner executes curation routines. The workflow orchestrator is the only
// production implementation; tests substitute fakes.
type Runner interface {
	RunMorningHybrid(ctx context.Context, targetReportID string) (*workflow.RoutineResult, error)
	RunBiweeklyDeep(ctx context.Context) (*workflow.RoutineResult, error)
	RunWeekendTheme(ctx context.Context) (*workflow.RoutineResult, error)
	RunEducational(ctx context.Context) (*workflow.RoutineResult, error)
	RefreshReports(ctx context.Context) (int, error)
}

// Config holds server configuration.
type Config struct {
	Port            int
	RefreshInterval time.Duration // 0 disables the background scanner
	RateLimit       *ratelimit.Config
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	runner      Runner
	reports     store.Store
	cache       *RunCache
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger

	refreshInterval time.Duration
	refreshStop     chan struct{}
}

// New creates a new server instance.
func New(cfg Config, runner Runner, reports store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		runner:          runner,
		reports:         reports,
		cache:           NewRunCache(),
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		logger:          logger,
		refreshInterval: cfg.RefreshInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /routines/run", s.handleRunRoutine)
	mux.HandleFunc("GET /runs/latest", s.handleLatestRun)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("POST /reports/refresh", s.handleRefreshReports)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Routine runs block on inference
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the fully wrapped handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	s.startRefresher()

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.stopRefresher()
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// startRefresher launches the background board scanner that keeps the
// durable report history current between routine runs.
func (s *Server) startRefresher() {
	if s.refreshInterval <= 0 {
		return
	}
	s.refreshStop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if _, err := s.runner.RefreshReports(ctx); err != nil {
					s.logger.Warn("background report refresh failed", zap.Error(err))
				}
				cancel()
			case <-s.refreshStop:
				return
			}
		}
	}()
}

func (s *Server) stopRefresher() {
	if s.refreshStop != nil {
		close(s.refreshStop)
	}
}

// withCORS adds CORS headers for the dashboard frontend.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request. For MVP
// this uses the IP address from RemoteAddr; a trusted-proxy deployment would
// read X-Forwarded-For instead.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
