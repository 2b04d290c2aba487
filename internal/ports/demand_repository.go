package ports

import (
	"context"
	"route-assignment-service/internal/domain"
)

// Port: read-only access to routable demand (orders) and capacity (drivers).
type DemandRepository interface {
	// Return the Pending orders among ids, with aggregated demand, ordered by id.
	PendingOrdersByIDs(ctx context.Context, ids []int64) ([]*domain.Order, error)
	// Return the active drivers among ids, ordered by id.
	ActiveDriversByIDs(ctx context.Context, ids []int64) ([]*domain.Driver, error)
}
