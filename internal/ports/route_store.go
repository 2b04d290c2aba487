package ports

import (
	"context"
	"errors"
	"route-assignment-service/internal/domain"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	// Returned when the bulk state change touched fewer orders than expected.
	ErrOrderStateConflict = errors.New("orders are no longer pending")
)

// Port: transactional writes of generated routes.
type RouteStore interface {
	// WithinTx runs fn inside one transaction. The transaction commits only if fn
	// returns nil; any error rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(tx RouteTx) error) error
}

// Writes available inside a RouteStore transaction.
type RouteTx interface {
	InsertRoute(ctx context.Context, route *domain.Route) (int64, error)
	InsertStop(ctx context.Context, routeID int64, stop domain.RouteStop) error
	// Move every order in ids from Pending to InProcess.
	MarkOrdersInProcess(ctx context.Context, ids []int64) error
}

// A route stop joined with its order data.
type RouteStopDetail struct {
	OrderID         int64
	VisitOrder      int
	StopState       string
	DeliveryAddress string
	Location        domain.Coordinates
	CustomerName    string
	OrderState      domain.OrderState
}

// Route header plus the driver's display name.
type RouteSummary struct {
	Route      *domain.Route
	DriverName string
}

// Port: read-only route queries.
type RouteReader interface {
	ListRoutesByStates(ctx context.Context, states []domain.RouteState) ([]RouteSummary, error)
	ListRoutesForDriver(ctx context.Context, driverID int64, states []domain.RouteState) ([]RouteSummary, error)
	// Return the route header and its stops in visit order, or ErrRouteNotFound.
	GetRouteDetail(ctx context.Context, routeID int64) (*RouteSummary, []RouteStopDetail, error)
	// Return the id of the driver's route in progress, or ErrRouteNotFound.
	ActiveRouteIDForDriver(ctx context.Context, driverID int64) (int64, error)
}
