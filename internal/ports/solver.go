package ports

import (
	"context"
	"errors"
	"route-assignment-service/internal/domain"
)

var (
	ErrSolverUnavailable     = errors.New("solver unavailable")
	ErrSolverInvalidResponse = errors.New("solver returned an invalid response")
)

// Contract for an external capacitated vehicle routing solver.
type Solver interface {
	// Solve returns one node sequence per vehicle used.
	Solve(ctx context.Context, problem *domain.RoutingProblem) ([]domain.SolverRoute, error)
}
