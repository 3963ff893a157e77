package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/shopcalc/internal/config"
	"github.com/Simplici0/shopcalc/internal/metrics"
	"github.com/Simplici0/shopcalc/internal/pricing"
	"github.com/Simplici0/shopcalc/internal/seed"
	"github.com/Simplici0/shopcalc/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	auth     *authService
	store    *store.Store
	metrics  *metrics.Metrics
	strategy pricing.Strategy
}

func main() {
	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	database, err := store.OpenMigrated(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seeded %d rows", stats.Inserts)
	}

	srv := &server{
		auth:     newAuthService(database, cfg.SessionSecret),
		store:    store.New(database),
		metrics:  metrics.New(""),
		strategy: cfg.SolverStrategy,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(cfg.IsDev()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	} else {
		log.Println("server stopped gracefully")
	}
}

func (s *server) routes(dev bool) http.Handler {
	r := chi.NewRouter()
	if dev {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/defaults", s.handleDefaults)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/solve", s.handleSolve)
		r.Post("/calculate", s.handleCalculate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/profiles", s.handleProfilesList)
			r.Post("/profiles", s.handleProfileCreate)
			r.Get("/profiles/{id}", s.handleProfileGet)
			r.Put("/profiles/{id}", s.handleProfileUpdate)
			r.Delete("/profiles/{id}", s.handleProfileDelete)
			r.Get("/profiles/{id}/result", s.handleProfileResult)
			r.Get("/profiles/{id}/export.csv", s.handleProfileExport)
			r.Get("/profiles/{id}/summary", s.handleProfileSummary)

			r.Get("/calculations", s.handleCalculationsList)
			r.Get("/calculations/{id}", s.handleCalculationGet)
		})
	})

	return r
}

// countRequests records every response under its route pattern, so ids in paths do not
// explode the label set.
func (s *server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
