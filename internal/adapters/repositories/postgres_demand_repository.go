package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"

	"github.com/doug-martin/goqu/v9"
)

// Postgres-backed implementation of the DemandRepository port.
type PostgresDemandRepository struct{ DB *sql.DB }

func NewPostgresDemandRepository(db *sql.DB) *PostgresDemandRepository {
	return &PostgresDemandRepository{DB: db}
}

func pendingOrdersQuery(ids []int64) (string, []any, error) {
	return pg.From(goqu.T("orders").As("o")).
		LeftJoin(goqu.T("order_items").As("oi"), goqu.On(goqu.Ex{"oi.order_id": goqu.I("o.id")})).
		LeftJoin(goqu.T("products").As("p"), goqu.On(goqu.Ex{"p.id": goqu.I("oi.product_id")})).
		Select(
			"o.id",
			"o.customer_first_name",
			"o.customer_last_name",
			"o.delivery_address",
			"o.lat",
			"o.lng",
			"o.state",
			goqu.L("COALESCE(SUM(oi.quantity * COALESCE(p.weight, 0)), 0)").As("demand"),
		).
		Where(goqu.Ex{
			"o.id":    ids,
			"o.state": string(domain.OrderPending),
		}).
		GroupBy("o.id").
		Order(goqu.I("o.id").Asc()).
		Prepared(true).
		ToSQL()
}

func activeDriversQuery(ids []int64) (string, []any, error) {
	return pg.From("users").
		Select("id", "first_name", "last_name", "active").
		Where(goqu.Ex{
			"id":     ids,
			"role":   domain.RoleDriver,
			"active": true,
		}).
		Order(goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
}

// Return Pending orders among ids with demand = sum(quantity * weight), ordered by id.
// Products without a weight contribute 0.
func (s *PostgresDemandRepository) PendingOrdersByIDs(
	ctx context.Context,
	ids []int64,
) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "demand.PendingOrdersByIDs")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres demand repository: DB is nil")
	}
	if len(ids) == 0 {
		return []*domain.Order{}, nil
	}

	query, args, err := pendingOrdersQuery(ids)
	if err != nil {
		return nil, fmt.Errorf("pending orders: build query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pending orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, len(ids))
	for rows.Next() {
		var o domain.Order
		var state string
		if err := rows.Scan(
			&o.OrderID,
			&o.CustomerFirstName,
			&o.CustomerLastName,
			&o.DeliveryAddress,
			&o.Location.Lat,
			&o.Location.Lng,
			&state,
			&o.Demand,
		); err != nil {
			return nil, fmt.Errorf("pending orders: scan row: %w", err)
		}
		o.State = domain.OrderState(state)
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending orders: row iteration: %w", err)
	}

	return orders, nil
}

// Return active drivers among ids, ordered by id.
func (s *PostgresDemandRepository) ActiveDriversByIDs(
	ctx context.Context,
	ids []int64,
) (_ []*domain.Driver, err error) {
	defer obs.Time(ctx, "demand.ActiveDriversByIDs")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres demand repository: DB is nil")
	}
	if len(ids) == 0 {
		return []*domain.Driver{}, nil
	}

	query, args, err := activeDriversQuery(ids)
	if err != nil {
		return nil, fmt.Errorf("active drivers: build query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("active drivers: query users table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, len(ids))
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.DriverID, &d.FirstName, &d.LastName, &d.Active); err != nil {
			return nil, fmt.Errorf("active drivers: scan row: %w", err)
		}
		drivers = append(drivers, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("active drivers: row iteration: %w", err)
	}

	return drivers, nil
}
