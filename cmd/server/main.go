package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"route-assignment-service/internal/adapters/claims"
	"route-assignment-service/internal/adapters/repositories"
	"route-assignment-service/internal/adapters/routing"
	"route-assignment-service/internal/api"
	"route-assignment-service/internal/config"
	"route-assignment-service/internal/platform/db"
	"route-assignment-service/internal/platform/metrics"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
	"route-assignment-service/internal/services"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It loads configuration and logging, then hands off to run so that every
// deferred cleanup executes before the process exits.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := obs.NewLogger(cfg.AppEnv)
	if err != nil {
		panic(err)
	}

	if envErr != nil {
		log.Info("No .env file found (using environment variables)")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run wires concrete adapters (Postgres, solver, OSRM, claim store) behind
// ports and serves HTTP until SIGINT/SIGTERM or a listener failure.
func run(cfg *config.Config, log *zap.Logger) error {
	metrics.RegisterDefault()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	var solver ports.Solver = routing.NewGreedySolver()
	if cfg.SolverMode == "http" {
		solver, err = routing.NewCVRPSolver(cfg.SolverURL, cfg.SolverTimeout)
		if err != nil {
			return fmt.Errorf("solver client: %w", err)
		}
	} else {
		log.Warn("using in-process greedy solver", zap.String("mode", cfg.SolverMode))
	}
	engine, err := routing.NewOSRMEngine(cfg.OSRMURL, cfg.OSRMTimeout)
	if err != nil {
		return fmt.Errorf("routing engine client: %w", err)
	}

	// Claims are shared across instances only when Redis is configured.
	var claimer ports.OrderClaimer = claims.NewMemoryClaimer(cfg.ClaimTTL)
	if cfg.RedisURL != "" {
		rc, err := claims.NewRedisClaimer(cfg.RedisURL, cfg.ClaimTTL)
		if err != nil {
			log.Warn("redis claimer unavailable, using in-process claims", zap.Error(err))
		} else {
			defer rc.Close()
			claimer = rc
		}
	}

	configStore := repositories.NewPostgresConfigStore(database)
	routeStore := repositories.NewPostgresRouteStore(database)

	generator := &services.RouteGenerator{
		Demand: repositories.NewPostgresDemandRepository(database),
		Config: configStore,
		Solver: solver,
		Engine: engine,
		Store:  routeStore,
		Claims: claimer,
		Log:    log,
	}
	queries := &services.RouteQueries{Reader: routeStore, Config: configStore}

	var limiter *rate.Limiter
	if cfg.GenerateRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.GenerateRateLimit), int(cfg.GenerateRateLimit)+1)
	}

	router := api.NewRouter(api.RouterDeps{
		Generator: generator,
		Queries:   queries,
		DB:        database,
		Limiter:   limiter,
		Log:       log,
	})

	// Write timeout covers one solver call plus one routing engine call per driver.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
