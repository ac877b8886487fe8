package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/importhub/internal/config"
	"github.com/Simplici0/importhub/internal/db"
	"github.com/Simplici0/importhub/internal/intel"
	"github.com/Simplici0/importhub/internal/logging"
	"github.com/Simplici0/importhub/internal/migrations"
	"github.com/Simplici0/importhub/internal/quote"
	"github.com/Simplici0/importhub/internal/seed"
	"github.com/Simplici0/importhub/internal/store"
	"github.com/Simplici0/importhub/internal/validate"
)

type server struct {
	store     *store.Store
	quotes    *quote.Service
	intel     *intel.Service
	auth      *authService
	validator *validate.Validator
	logger    *zap.Logger
}

func newServer(st *store.Store, auth *authService, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{
		store:     st,
		quotes:    quote.NewService(st, logger),
		intel:     intel.NewService(st, logger),
		auth:      auth,
		validator: validate.New(),
		logger:    logger,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	migrations.SetLogger(logger)
	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Costs:         cfg.Costs.CostConfig(),
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	logger.Info("seed completed", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	st := store.New(database)
	auth, err := newAuthService(st, cfg.SessionSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}
	srv := newServer(st, auth, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/me", s.handleMe)
			r.Get("/dashboard", s.handleDashboard)
			r.Post("/estimate", s.handleEstimate)
			r.Post("/kits", s.handleKit)
			r.Get("/settings/costs", s.handleCostSettingsGet)

			r.Get("/clients", s.handleClientsList)
			r.Post("/clients", s.handleClientsCreate)
			r.Get("/clients/{id}", s.handleClientsGet)
			r.Put("/clients/{id}", s.handleClientsUpdate)

			r.Get("/suppliers", s.handleSuppliersList)
			r.Post("/suppliers", s.handleSuppliersCreate)
			r.Get("/suppliers/{id}", s.handleSuppliersGet)
			r.Put("/suppliers/{id}", s.handleSuppliersUpdate)
			r.Get("/suppliers/{id}/skus", s.handleSKUMappingsList)
			r.Post("/suppliers/{id}/skus", s.handleSKUMappingsCreate)
			r.Post("/suppliers/{id}/prices/import", s.handlePricesImport)

			r.Get("/items", s.handleItemsList)
			r.Post("/items", s.handleItemsCreate)
			r.Get("/items/{id}", s.handleItemsGet)
			r.Put("/items/{id}", s.handleItemsUpdate)
			r.Get("/items/{id}/prices", s.handlePricesList)
			r.Post("/items/{id}/prices", s.handlePricesCreate)
			r.Get("/items/{id}/stats", s.handlePriceStats)
			r.Post("/items/{id}/compare", s.handleCompare)

			r.Get("/quotes", s.handleQuotesList)
			r.Post("/quotes", s.handleQuotesCreate)
			r.Get("/quotes/{id}", s.handleQuoteDetail)
			r.Put("/quotes/{id}", s.handleQuotesUpdate)
			r.Post("/quotes/{id}/lines", s.handleQuoteLinesCreate)
			r.Delete("/quotes/{id}/lines/{lineID}", s.handleQuoteLinesDelete)
			r.Get("/quotes/{id}/breakdown", s.handleQuoteBreakdown)
			r.Get("/quotes/{id}/scenarios", s.handleQuoteScenarios)
			r.Get("/quotes/{id}/text", s.handleQuoteText)
			r.Get("/quotes/{id}/xlsx", s.handleQuoteXLSX)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Put("/settings/costs", s.handleCostSettingsPut)
				r.Get("/users", s.handleUsersList)
				r.Post("/users", s.handleUsersCreate)
				r.Delete("/clients/{id}", s.handleClientsDelete)
				r.Delete("/suppliers/{id}", s.handleSuppliersDelete)
				r.Delete("/skus/{id}", s.handleSKUMappingsDelete)
				r.Delete("/items/{id}", s.handleItemsDelete)
				r.Delete("/prices/{id}", s.handlePricesDelete)
				r.Delete("/quotes/{id}", s.handleQuotesDelete)
			})
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		s.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
