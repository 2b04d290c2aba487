package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Postgres-backed implementation of the RouteStore and RouteReader ports.
type PostgresRouteStore struct{ DB *sql.DB }

func NewPostgresRouteStore(db *sql.DB) *PostgresRouteStore {
	return &PostgresRouteStore{DB: db}
}

func (s *PostgresRouteStore) WithinTx(
	ctx context.Context,
	fn func(tx ports.RouteTx) error,
) (err error) {
	defer obs.Time(ctx, "routes.WithinTx")(&err)

	if s.DB == nil {
		return errors.New("postgres route store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("route tx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&pgRouteTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("route tx: commit: %w", err)
	}

	return nil
}

type pgRouteTx struct {
	tx *sql.Tx
}

func (t *pgRouteTx) InsertRoute(ctx context.Context, route *domain.Route) (int64, error) {
	if route == nil {
		return 0, errors.New("insert route: route is nil")
	}

	instructions, err := json.Marshal(route.Instructions)
	if err != nil {
		return 0, fmt.Errorf("insert route: marshal instructions: %w", err)
	}

	var geometry any
	if len(route.Geometry) > 0 {
		geometry = string(route.Geometry)
	}

	state := route.State
	if state == "" {
		state = domain.RouteAssigned
	}

	q := `
	INSERT INTO routes (driver_id, state, distance_meters, duration_seconds, geometry, instructions)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id;
	`

	var id int64
	if err := t.tx.QueryRowContext(
		ctx, q,
		route.DriverID,
		string(state),
		route.DistanceMeters,
		route.DurationSeconds,
		geometry,
		string(instructions),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert route driver_id=%d: %w", route.DriverID, err)
	}

	return id, nil
}

func (t *pgRouteTx) InsertStop(ctx context.Context, routeID int64, stop domain.RouteStop) error {
	q := `
	INSERT INTO route_stops (route_id, order_id, visit_order)
	VALUES ($1, $2, $3);
	`

	if _, err := t.tx.ExecContext(ctx, q, routeID, stop.OrderID, stop.VisitOrder); err != nil {
		return fmt.Errorf("insert stop route_id=%d order_id=%d: %w", routeID, stop.OrderID, err)
	}

	return nil
}

// The update only touches orders still Pending; a short row count means another
// writer got there first and the whole transaction must be abandoned.
func (t *pgRouteTx) MarkOrdersInProcess(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := pg.Update("orders").
		Set(goqu.Record{"state": string(domain.OrderInProcess)}).
		Where(goqu.Ex{
			"id":    ids,
			"state": string(domain.OrderPending),
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("mark orders in process: build query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark orders in process: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark orders in process: rows affected: %w", err)
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("mark orders in process: updated %d of %d: %w", n, len(ids), ports.ErrOrderStateConflict)
	}

	return nil
}

func scanRouteSummary(
	scan func(dest ...any) error,
) (*ports.RouteSummary, error) {
	var r domain.Route
	var state, firstName, lastName string
	var geometry, instructions []byte

	if err := scan(
		&r.RouteID,
		&r.DriverID,
		&r.CreatedAt,
		&state,
		&r.DistanceMeters,
		&r.DurationSeconds,
		&geometry,
		&instructions,
		&firstName,
		&lastName,
	); err != nil {
		return nil, err
	}

	r.State = domain.RouteState(state)
	if len(geometry) > 0 {
		r.Geometry = json.RawMessage(geometry)
	}
	if len(instructions) > 0 {
		if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
			return nil, fmt.Errorf("decode instructions route_id=%d: %w", r.RouteID, err)
		}
	}

	return &ports.RouteSummary{
		Route:      &r,
		DriverName: strings.TrimSpace(firstName + " " + lastName),
	}, nil
}

var routeColumns = []any{
	"r.id",
	"r.driver_id",
	"r.created_at",
	"r.state",
	"r.distance_meters",
	"r.duration_seconds",
	"r.geometry",
	"r.instructions",
	"u.first_name",
	"u.last_name",
}

func stateValues(states []domain.RouteState) []string {
	raw := make([]string, 0, len(states))
	for _, st := range states {
		raw = append(raw, string(st))
	}
	return raw
}

func (s *PostgresRouteStore) listRoutes(
	ctx context.Context,
	where goqu.Ex,
	order ...exp.OrderedExpression,
) ([]ports.RouteSummary, error) {
	query, args, err := pg.From(goqu.T("routes").As("r")).
		InnerJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("r.driver_id")})).
		Select(routeColumns...).
		Where(where).
		Order(order...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query routes table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.RouteSummary, 0, 16)
	for rows.Next() {
		sum, err := scanRouteSummary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, *sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

// Return routes in any of states, newest first.
func (s *PostgresRouteStore) ListRoutesByStates(
	ctx context.Context,
	states []domain.RouteState,
) (_ []ports.RouteSummary, err error) {
	defer obs.Time(ctx, "routes.ListRoutesByStates")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres route store: DB is nil")
	}
	if len(states) == 0 {
		return []ports.RouteSummary{}, nil
	}

	out, err := s.listRoutes(ctx,
		goqu.Ex{"r.state": stateValues(states)},
		goqu.I("r.created_at").Desc(),
	)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return out, nil
}

// Return driverID's routes in any of states, grouped by state and newest
// first within a state.
func (s *PostgresRouteStore) ListRoutesForDriver(
	ctx context.Context,
	driverID int64,
	states []domain.RouteState,
) (_ []ports.RouteSummary, err error) {
	defer obs.Time(ctx, "routes.ListRoutesForDriver")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres route store: DB is nil")
	}
	if len(states) == 0 {
		return []ports.RouteSummary{}, nil
	}

	out, err := s.listRoutes(ctx,
		goqu.Ex{"r.driver_id": driverID, "r.state": stateValues(states)},
		goqu.I("r.state").Asc(),
		goqu.I("r.created_at").Desc(),
	)
	if err != nil {
		return nil, fmt.Errorf("list routes driver_id=%d: %w", driverID, err)
	}
	return out, nil
}

func (s *PostgresRouteStore) GetRouteDetail(
	ctx context.Context,
	routeID int64,
) (_ *ports.RouteSummary, _ []ports.RouteStopDetail, err error) {
	defer obs.Time(ctx, "routes.GetRouteDetail")(&err)

	if s.DB == nil {
		return nil, nil, errors.New("postgres route store: DB is nil")
	}

	headerQuery := `
	SELECT
		r.id, r.driver_id, r.created_at, r.state,
		r.distance_meters, r.duration_seconds,
		r.geometry, r.instructions,
		u.first_name, u.last_name
	FROM routes r
	JOIN users u ON u.id = r.driver_id
	WHERE r.id = $1
	LIMIT 1;
	`

	sum, err := scanRouteSummary(s.DB.QueryRowContext(ctx, headerQuery, routeID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("route detail id=%d: %w", routeID, ports.ErrRouteNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("route detail id=%d: %w", routeID, err)
	}

	stopsQuery := `
	SELECT
		rs.order_id, rs.visit_order, rs.stop_state,
		o.delivery_address, o.lat, o.lng,
		o.customer_first_name, o.customer_last_name, o.state
	FROM route_stops rs
	JOIN orders o ON o.id = rs.order_id
	WHERE rs.route_id = $1
	ORDER BY rs.visit_order ASC;
	`

	rows, err := s.DB.QueryContext(ctx, stopsQuery, routeID)
	if err != nil {
		return nil, nil, fmt.Errorf("route detail id=%d: query route_stops table: %w", routeID, err)
	}
	defer rows.Close()

	stops := make([]ports.RouteStopDetail, 0, 16)
	for rows.Next() {
		var d ports.RouteStopDetail
		var first, last, orderState string
		if err := rows.Scan(
			&d.OrderID,
			&d.VisitOrder,
			&d.StopState,
			&d.DeliveryAddress,
			&d.Location.Lat,
			&d.Location.Lng,
			&first,
			&last,
			&orderState,
		); err != nil {
			return nil, nil, fmt.Errorf("route detail id=%d: scan stop: %w", routeID, err)
		}
		d.CustomerName = strings.TrimSpace(first + " " + last)
		d.OrderState = domain.OrderState(orderState)
		stops = append(stops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("route detail id=%d: row iteration: %w", routeID, err)
	}

	return sum, stops, nil
}

// Return the most recent route in progress for driverID.
func (s *PostgresRouteStore) ActiveRouteIDForDriver(
	ctx context.Context,
	driverID int64,
) (_ int64, err error) {
	defer obs.Time(ctx, "routes.ActiveRouteIDForDriver")(&err)

	if s.DB == nil {
		return 0, errors.New("postgres route store: DB is nil")
	}

	q := `
	SELECT id
	FROM routes
	WHERE driver_id = $1
		AND state = $2
	ORDER BY created_at DESC
	LIMIT 1;
	`

	var id int64
	err = s.DB.QueryRowContext(ctx, q, driverID, string(domain.RouteEnCurso)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("active route driver_id=%d: %w", driverID, ports.ErrRouteNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("active route driver_id=%d: %w", driverID, err)
	}

	return id, nil
}

