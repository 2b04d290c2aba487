package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	MsgRouteSuccess        = "Ruta generada y procesada."
	MsgEngineUnavailable   = "No se pudo obtener la ruta desde OSRM."
	MsgEngineInvalidAnswer = "Respuesta inválida de OSRM."
	MsgEmptyRoute          = "Ruta vacía o inválida (menos de 2 puntos)."
)

// Route totals reported by the routing engine.
type Totals struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Outcome of one solver route. RouteID is set only once the route is persisted.
type RouteResult struct {
	RouteID      *int64
	Driver       *domain.Driver
	Stops        []domain.RouteStop
	Status       domain.RouteOutcome
	Message      string
	Geometry     json.RawMessage
	Instructions []domain.Instruction
	Totals       *Totals
}

// Route builds the persistable route for a successful result.
func (r *RouteResult) Route() *domain.Route {
	route := &domain.Route{
		DriverID:     r.Driver.DriverID,
		Geometry:     r.Geometry,
		Instructions: r.Instructions,
		State:        domain.RouteAssigned,
		Stops:        r.Stops,
	}
	if r.Totals != nil {
		route.DistanceMeters = r.Totals.DistanceMeters
		route.DurationSeconds = r.Totals.DurationSeconds
	}
	return route
}

// RouteMaterializer turns solver node sequences into driving routes.
// It keeps track of orders placed during one generation run, so a new
// materializer is needed per run.
type RouteMaterializer struct {
	engine ports.RoutingEngine
	depot  domain.Coordinates
	table  domain.NodeTable
	placed map[int64]struct{}
	log    *zap.Logger
}

func NewRouteMaterializer(
	engine ports.RoutingEngine,
	depot domain.Coordinates,
	table domain.NodeTable,
	log *zap.Logger,
) *RouteMaterializer {
	if log == nil {
		log = zap.L()
	}
	return &RouteMaterializer{
		engine: engine,
		depot:  depot,
		table:  table,
		placed: make(map[int64]struct{}),
		log:    log,
	}
}

// Materialize resolves nodes, asks the routing engine for the path and
// classifies the result. Engine failures are reported in the result and
// never returned as errors.
func (m *RouteMaterializer) Materialize(
	ctx context.Context,
	nodes domain.SolverRoute,
	driver *domain.Driver,
) *RouteResult {
	res := &RouteResult{Driver: driver, Stops: []domain.RouteStop{}}

	path := make([]domain.Coordinates, 0, len(nodes)+1)
	var skipped []string

	for _, node := range nodes {
		if node == domain.DepotNode {
			path = append(path, m.depot)
			continue
		}

		order, ok := m.table[node]
		if !ok {
			m.log.Warn("solver node not found", zap.Int("node", node), zap.Int64("driver_id", driver.DriverID))
			skipped = append(skipped, strconv.Itoa(node))
			continue
		}
		if _, dup := m.placed[order.OrderID]; dup {
			m.log.Warn("order already placed in this run",
				zap.Int("node", node),
				zap.Int64("order_id", order.OrderID),
				zap.Int64("driver_id", driver.DriverID),
			)
			skipped = append(skipped, strconv.Itoa(node))
			continue
		}

		m.placed[order.OrderID] = struct{}{}
		path = append(path, order.Location)
		res.Stops = append(res.Stops, domain.RouteStop{OrderID: order.OrderID, VisitOrder: len(res.Stops) + 1})
	}

	// The depot closes every path, even one the solver already closed.
	if len(path) > 1 {
		path = append(path, m.depot)
	}

	defer func() {
		if len(skipped) > 0 {
			res.Message = fmt.Sprintf("%s Nodos omitidos: %s.", res.Message, strings.Join(skipped, ", "))
		}
	}()

	if len(path) < 2 {
		res.Status = domain.OutcomeEmptyRoute
		res.Message = MsgEmptyRoute
		return res
	}

	er, err := m.engine.Route(ctx, path)
	if err != nil {
		m.log.Warn("routing engine failed", zap.Int64("driver_id", driver.DriverID), zap.Error(err))

		res.Status = domain.OutcomeEngineUnavailable
		res.Message = MsgEngineUnavailable
		if errors.Is(err, ports.ErrEngineInvalidResponse) {
			res.Status = domain.OutcomeEngineInvalidResponse
			res.Message = MsgEngineInvalidAnswer
		}
		return res
	}

	res.Status = domain.OutcomeSuccess
	res.Message = MsgRouteSuccess
	res.Geometry = json.RawMessage(er.Geometry)
	res.Instructions = er.Instructions
	res.Totals = &Totals{DistanceMeters: er.DistanceMeters, DurationSeconds: er.DurationSeconds}

	return res
}
