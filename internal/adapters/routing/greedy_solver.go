package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
)

// GreedySolver is an in-process stand-in for the solver service, used for
// local runs without one.
//
// Vehicles are filled one at a time. From the current position the nearest
// unvisited node whose demand still fits is appended; when nothing fits the
// vehicle returns to the depot and the next one starts. Ties go to the lower
// node number so results are deterministic. Nodes whose demand exceeds the
// capacity on their own are never routed.
type GreedySolver struct{}

func NewGreedySolver() *GreedySolver {
	return &GreedySolver{}
}

func (GreedySolver) Solve(
	ctx context.Context,
	problem *domain.RoutingProblem,
) (_ []domain.SolverRoute, err error) {
	defer obs.Time(ctx, "greedy.Solve")(&err)

	if problem == nil || len(problem.Points) == 0 {
		return nil, errors.New("greedy solve: empty problem")
	}
	if len(problem.Points) != len(problem.Demands) {
		return nil, fmt.Errorf("greedy solve: points (%d) and demands (%d) differ in length", len(problem.Points), len(problem.Demands))
	}

	depot := problem.Points[0]
	remaining := make(map[int]struct{}, len(problem.Points)-1)
	for i := 1; i < len(problem.Points); i++ {
		remaining[i] = struct{}{}
	}

	routes := make([]domain.SolverRoute, 0, problem.VehicleCount)

	for v := 0; v < problem.VehicleCount && len(remaining) > 0; v++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		load := 0
		current := depot.Coordinates
		route := domain.SolverRoute{depot.Node}

		for {
			best := -1
			bestDist := math.MaxFloat64

			// Select next stop by minimum straight-line distance (greedy step).
			for i := range remaining {
				if load+problem.Demands[i] > problem.Capacity {
					continue
				}
				d := current.DistanceTo(problem.Points[i].Coordinates)
				if d < bestDist || (best >= 0 && d == bestDist && problem.Points[i].Node < problem.Points[best].Node) {
					best = i
					bestDist = d
				}
			}
			if best < 0 {
				break
			}

			route = append(route, problem.Points[best].Node)
			load += problem.Demands[best]
			current = problem.Points[best].Coordinates
			delete(remaining, best)
		}

		if len(route) == 1 {
			break
		}
		routes = append(routes, append(route, depot.Node))
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("greedy solve: no node fits capacity %d: %w", problem.Capacity, ports.ErrSolverInvalidResponse)
	}

	return routes, nil
}
