package services

import (
	"context"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
)

// Orders and drivers available to one generation request.
type Demand struct {
	Orders  []*domain.Order
	Drivers []*domain.Driver
}

// GatherDemand loads the routable orders and drivers among the requested ids.
// Empty results are returned as-is; callers decide whether that is fatal.
func GatherDemand(
	ctx context.Context,
	repo ports.DemandRepository,
	orderIDs []int64,
	driverIDs []int64,
) (*Demand, error) {
	orders, err := repo.PendingOrdersByIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("gather demand: pending orders: %w", err)
	}

	drivers, err := repo.ActiveDriversByIDs(ctx, driverIDs)
	if err != nil {
		return nil, fmt.Errorf("gather demand: active drivers: %w", err)
	}

	return &Demand{Orders: orders, Drivers: drivers}, nil
}
