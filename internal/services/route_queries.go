package services

import (
	"context"
	"errors"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"strings"
)

var ErrNotFound = errors.New("not found")

// States listed for a driver when the caller names none.
var DefaultDriverStates = []domain.RouteState{domain.RouteAssigned, domain.RouteEnCurso}

// Route header with its stops in visit order.
type RouteDetail struct {
	Summary *ports.RouteSummary
	Stops   []ports.RouteStopDetail
}

// RouteQueries serves read-only lookups over generated routes and configuration.
type RouteQueries struct {
	Reader ports.RouteReader
	Config ports.ConfigStore
}

// ParseStates splits a comma separated state list, dropping blanks.
func ParseStates(raw string) []domain.RouteState {
	out := make([]domain.RouteState, 0, 3)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, domain.RouteState(s))
	}
	return out
}

func (q *RouteQueries) ListByStates(ctx context.Context, states []domain.RouteState) ([]ports.RouteSummary, error) {
	if len(states) == 0 {
		return nil, newPipelineError(KindValidation, MsgNoStatesRequested, nil)
	}

	routes, err := q.Reader.ListRoutesByStates(ctx, states)
	if err != nil {
		return nil, fmt.Errorf("list routes by states: %w", err)
	}
	return routes, nil
}

func (q *RouteQueries) ListForDriver(
	ctx context.Context,
	driverID int64,
	states []domain.RouteState,
) ([]ports.RouteSummary, error) {
	if len(states) == 0 {
		return nil, newPipelineError(KindValidation, MsgNoStatesRequested, nil)
	}

	routes, err := q.Reader.ListRoutesForDriver(ctx, driverID, states)
	if err != nil {
		return nil, fmt.Errorf("list driver routes: %w", err)
	}
	return routes, nil
}

func (q *RouteQueries) Detail(ctx context.Context, routeID int64) (*RouteDetail, error) {
	sum, stops, err := q.Reader.GetRouteDetail(ctx, routeID)
	if errors.Is(err, ports.ErrRouteNotFound) {
		return nil, fmt.Errorf("route %d: %w", routeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("route detail: %w", err)
	}
	return &RouteDetail{Summary: sum, Stops: stops}, nil
}

// ActiveForDriver returns the driver's route in progress, or nil when there is none.
func (q *RouteQueries) ActiveForDriver(ctx context.Context, driverID int64) (*RouteDetail, error) {
	routeID, err := q.Reader.ActiveRouteIDForDriver(ctx, driverID)
	if errors.Is(err, ports.ErrRouteNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active route: %w", err)
	}

	detail, err := q.Detail(ctx, routeID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return detail, err
}

func (q *RouteQueries) ConfigValue(ctx context.Context, key string) (domain.ConfigValue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ConfigValue{}, newPipelineError(KindValidation, "Se requiere el parámetro clave.", nil)
	}

	cv, err := q.Config.GetConfigValue(ctx, key)
	if errors.Is(err, ports.ErrConfigNotFound) {
		return domain.ConfigValue{}, fmt.Errorf("config %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return domain.ConfigValue{}, fmt.Errorf("config value: %w", err)
	}
	return cv, nil
}

func (q *RouteQueries) EditableConfig(ctx context.Context) ([]domain.ConfigValue, error) {
	values, err := q.Config.ListEditableConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("editable config: %w", err)
	}
	return values, nil
}
