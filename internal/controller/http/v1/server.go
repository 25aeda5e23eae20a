// Package v1 exposes the HTTP surface: upload ingestion, result polling,
// health and metrics.
package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps the HTTP server with its chi router.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and the underlying HTTP server.
func NewServer(
	log *slog.Logger,
	port int,
	handler *GeoHandler,
	pinger Pinger,
	reg *prometheus.Registry,
) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculateDistances", handler.CalculateDistances)
		r.Get("/getResult/{upload_uuid}", handler.GetResult)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := pinger.Ping(req.Context()); err != nil {
			log.ErrorContext(req.Context(), "Health check failed", "error", err)
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  time.Minute,
			Handler:      r,
		},
	}
}

// ListenAndServe starts serving requests.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
