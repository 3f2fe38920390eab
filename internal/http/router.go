package http

import (
	"context"
	"net/http"
	"time"

	"github.com/clearmeat/assessment/internal/logger"
	"github.com/clearmeat/assessment/internal/ratelimit"

	"github.com/gorilla/mux"
)

// Server represents the HTTP facade with all dependencies
type Server struct {
	handler *Handler
	logger  logger.Service
	server  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	addr string,
	handler *Handler,
	logger logger.Service,
	rateLimiter ratelimit.Service,
	readTimeout, writeTimeout time.Duration,
) *Server {
	router := mux.NewRouter()

	srv := &Server{
		handler: handler,
		logger:  logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	// Register middleware (order matters: logging -> rate limiting -> cors -> recovery)
	router.Use(loggingMiddleware(logger))
	router.Use(rateLimitingMiddleware(rateLimiter, logger))
	router.Use(corsMiddleware())
	router.Use(recoveryMiddleware(logger))

	srv.registerRoutes(router)

	return srv
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(router *mux.Router) {
	// Health check
	router.HandleFunc("/health", s.handler.HealthCheck).Methods("GET")

	// API routes
	router.HandleFunc("/api/products/{id}/assessment", s.handler.GetAssessment).Methods("GET")
	router.HandleFunc("/api/cache", s.handler.ClearCache).Methods("DELETE")
	router.HandleFunc("/api/cache/stats", s.handler.CacheStats).Methods("GET")
	router.HandleFunc("/api/auth/status", s.handler.AuthStatus).Methods("GET")
	router.HandleFunc("/api/auth/credential", s.handler.StoreCredential).Methods("PUT")
	router.HandleFunc("/api/auth/credential", s.handler.ClearCredential).Methods("DELETE")

	// Root handler
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Product Assessment API","version":"1.0.0","endpoints":["/health","/api/products/{id}/assessment","/api/cache","/api/cache/stats","/api/auth/status","/api/auth/credential"]}`))
	}).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
