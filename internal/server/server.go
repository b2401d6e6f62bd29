// Package server exposes the dashboard over a JSON HTTP API.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/nestegg/internal/auth"
	nesteggmw "github.com/Veraticus/nestegg/internal/server/middleware"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Defaults applied when Config leaves them unset.
const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxTrials       = 100_000
	readHeaderTimeout      = 5 * time.Second
)

// Authenticator logs users in and mints and checks their tokens.
type Authenticator interface {
	nesteggmw.TokenVerifier
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	IssueToken(session *auth.Session) (string, error)
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Reports service.ReportStore
	Plans   service.PlanStore
	Gate    Authenticator
	Logger  *slog.Logger
}

// SimulationConfig bounds Monte Carlo requests.
type SimulationConfig struct {
	Trials     int
	Volatility float64
	Workers    int
	MaxTrials  int
}

// Config configures the web API. A non-nil TLS serves HTTPS.
type Config struct {
	TLS             *tls.Config
	Addr            string
	Dependencies    Dependencies
	Simulation      SimulationConfig
	ShutdownTimeout time.Duration
}

// WebAPI is the HTTP server of the dashboard.
type WebAPI struct {
	router          *chi.Mux
	logger          *slog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// ConfigureRouter builds the routes of the API.
func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := newHandler(deps, config.Simulation)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(nesteggmw.Logger(logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(nesteggmw.RequireSession(deps.Gate))

			r.Post("/rental/statements", h.AnalyzeStatement)
			r.Get("/rental/reports", h.ListReports)
			r.Get("/rental/reports/{id}", h.GetReport)
			r.Delete("/rental/reports/{id}", h.DeleteReport)

			r.Post("/retirement/projections", h.RunProjection)
			r.Get("/retirement/plans", h.ListPlans)
			r.Post("/retirement/plans", h.CreatePlan)
			r.Get("/retirement/plans/{name}", h.GetPlan)
			r.Delete("/retirement/plans/{name}", h.DeletePlan)
		})
	})

	return router
}

// NewWebAPI creates the server. Call Start to serve.
func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)

	logger := config.Dependencies.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			TLSConfig:         config.TLS,
		},
	}
}

// Handler returns the root HTTP handler.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		if w.server.TLSConfig != nil {
			w.logger.Info("Starting server", "addr", w.server.Addr, "tls", true)
			serverErrors <- w.server.ListenAndServeTLS("", "")
			return
		}
		w.logger.Info("Starting server", "addr", w.server.Addr)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("Shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error("Graceful shutdown failed", "error", err)
			err = w.server.Close()
		}
		return err
	}
}
