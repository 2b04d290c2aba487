package ports

import (
	"context"
	"errors"
	"route-assignment-service/internal/domain"
)

var (
	ErrEngineUnavailable     = errors.New("routing engine unavailable")
	ErrEngineInvalidResponse = errors.New("routing engine returned an invalid response")
)

// Contract for a road routing engine that drives through an ordered path.
type RoutingEngine interface {
	// Return geometry, totals and turn instructions for the given path.
	Route(ctx context.Context, path []domain.Coordinates) (*domain.EngineRoute, error)
}
