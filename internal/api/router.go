package api

import (
	"net/http"
	"route-assignment-service/internal/api/handlers"
	"route-assignment-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Generator handlers.Generator
	Queries   handlers.Queries
	DB        handlers.Pinger
	Limiter   *rate.Limiter
	Log       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.L()
	}

	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{DB: deps.DB}
	routeHandler := &handlers.RouteHandler{Generator: deps.Generator}
	queryHandler := &handlers.QueryHandler{Queries: deps.Queries}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/rutas/generar", rateLimited(deps.Limiter, routeHandler.Generate))
	mux.HandleFunc("/rutas", queryHandler.List)
	mux.HandleFunc("/rutas/{id}", queryHandler.Detail)
	mux.HandleFunc("/repartidores/{id}/ruta-activa", queryHandler.ActiveRoute)
	mux.HandleFunc("/repartidores/{id}/rutas", queryHandler.DriverRoutes)
	mux.HandleFunc("/configuracion", queryHandler.Config)

	return requestIDMiddleware(observeMiddleware(log, mux))
}
