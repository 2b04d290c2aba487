package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
	"strconv"
	"strings"
	"time"
)

// CVRPSolver implements ports.Solver against the form-based solver service.
//
// Request fields:
//   - data: JSON [{"nodo": n, "coordenadas": {"lat": .., "lng": ..}}]
//   - nroVehiculos, capacidadMax: decimal integers
//   - demandas: JSON integer array aligned with data
//
// The response field "rutas" is a JSON string whose content is the
// [[node,...],...] array, so it is decoded twice.
type CVRPSolver struct {
	session  *httpSession
	endpoint string
}

func NewCVRPSolver(endpoint string, timeout time.Duration) (*CVRPSolver, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("solver endpoint is empty")
	}

	return &CVRPSolver{
		session:  newHTTPSession("solver", timeout),
		endpoint: endpoint,
	}, nil
}

type solverPoint struct {
	Node        int         `json:"nodo"`
	Coordinates solverCoord `json:"coordenadas"`
}

type solverCoord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type solverResponse struct {
	Routes *string `json:"rutas"`
}

func (c *CVRPSolver) Solve(
	ctx context.Context,
	problem *domain.RoutingProblem,
) (_ []domain.SolverRoute, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)

	if problem == nil {
		return nil, errors.New("solve: problem is nil")
	}

	form, err := encodeProblem(problem)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	req, err := c.session.newRequest(
		ctx,
		http.MethodPost,
		c.endpoint,
		strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded",
	)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	resp, err := c.session.do(req)
	if err != nil {
		return nil, fmt.Errorf("solve: %w: %v", ports.ErrSolverUnavailable, err)
	}
	defer resp.Body.Close()

	var sr solverResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("solve: decode response: %w: %v", ports.ErrSolverInvalidResponse, err)
	}

	routes, err := decodeRoutes(sr.Routes)
	if err != nil {
		return nil, fmt.Errorf("solve: %w: %v", ports.ErrSolverInvalidResponse, err)
	}

	return routes, nil
}

func encodeProblem(problem *domain.RoutingProblem) (url.Values, error) {
	if len(problem.Points) != len(problem.Demands) {
		return nil, fmt.Errorf("points (%d) and demands (%d) differ in length", len(problem.Points), len(problem.Demands))
	}

	points := make([]solverPoint, 0, len(problem.Points))
	for _, p := range problem.Points {
		points = append(points, solverPoint{
			Node:        p.Node,
			Coordinates: solverCoord{Lat: p.Coordinates.Lat, Lng: p.Coordinates.Lng},
		})
	}

	data, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("marshal points: %w", err)
	}

	demands, err := json.Marshal(problem.Demands)
	if err != nil {
		return nil, fmt.Errorf("marshal demands: %w", err)
	}

	form := url.Values{}
	form.Set("data", string(data))
	form.Set("nroVehiculos", strconv.Itoa(problem.VehicleCount))
	form.Set("capacidadMax", strconv.Itoa(problem.Capacity))
	form.Set("demandas", string(demands))

	return form, nil
}

// decodeRoutes parses the inner JSON text of "rutas".
func decodeRoutes(raw *string) ([]domain.SolverRoute, error) {
	if raw == nil {
		return nil, errors.New(`missing "rutas"`)
	}

	var nodes [][]int
	if err := json.Unmarshal([]byte(*raw), &nodes); err != nil {
		return nil, fmt.Errorf(`decode "rutas": %w`, err)
	}
	if len(nodes) == 0 {
		return nil, errors.New(`"rutas" is empty`)
	}

	routes := make([]domain.SolverRoute, 0, len(nodes))
	for _, n := range nodes {
		routes = append(routes, domain.SolverRoute(n))
	}

	return routes, nil
}
