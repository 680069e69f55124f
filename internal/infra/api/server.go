package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ramadan-timetable-bot/internal/infra/api/apiv1"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthFunc reports whether a dependency is usable.
type HealthFunc func(ctx context.Context) error

// AdminServer serves health, metrics and the read-only v1 API.
type AdminServer struct {
	srv    *http.Server
	router chi.Router
	log    *zerolog.Logger
}

func NewAdminServer(port int, apiKey string, v1 *apiv1.Server, health HealthFunc, logger *zerolog.Logger) *AdminServer {
	l := logger.With().Str("component", "admin_http").Logger()

	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(&l), Recover(&l), Timeout(10*time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := NewAuthManager(apiKey, 30*time.Minute)
	if auth != nil {
		r.Post("/api/v1/auth/login", auth.Login)
	}
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(auth))
		apiv1.RegisterAPIV1(r, v1)
	})

	return &AdminServer{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		router: r,
		log:    &l,
	}
}

// Handler exposes the router for tests.
func (s *AdminServer) Handler() http.Handler { return s.router }

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *AdminServer) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("admin server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
