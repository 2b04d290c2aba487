package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-assignment-service/internal/domain"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createUsersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createProductsQuery := `
	CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		weight DOUBLE PRECISION
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		customer_first_name TEXT NOT NULL,
		customer_last_name TEXT NOT NULL DEFAULT '',
		delivery_address TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		state TEXT NOT NULL DEFAULT 'Pendiente',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOrderItemsQuery := `
	CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0)
	);
	`

	createConfigQuery := `
	CREATE TABLE IF NOT EXISTS system_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		value_type TEXT NOT NULL DEFAULT 'string',
		config_group TEXT NOT NULL DEFAULT 'general',
		editable BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	// Databases created before the editable flag existed.
	alterConfigQuery := `
	ALTER TABLE system_config
	ADD COLUMN IF NOT EXISTS editable BOOLEAN NOT NULL DEFAULT TRUE;
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id BIGSERIAL PRIMARY KEY,
		driver_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		state TEXT NOT NULL DEFAULT 'Asignada',
		distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		geometry JSONB,
		instructions JSONB
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		id BIGSERIAL PRIMARY KEY,
		route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		order_id BIGINT NOT NULL REFERENCES orders(id),
		visit_order INTEGER NOT NULL,
		stop_state TEXT NOT NULL DEFAULT 'Pendiente',
		failure_reason TEXT,
		UNIQUE (route_id, visit_order)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_driver_state
	ON routes(driver_id, state);
	`

	statements := []string{
		createUsersQuery,
		createProductsQuery,
		createOrdersQuery,
		createOrderItemsQuery,
		createConfigQuery,
		alterConfigQuery,
		createRoutesQuery,
		createRouteStopsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type Seed struct {
	Users    []UserSeed    `json:"users"`
	Products []ProductSeed `json:"products"`
	Orders   []OrderSeed   `json:"orders"`
	Config   []ConfigSeed  `json:"config"`
}

type UserSeed struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

type ProductSeed struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Weight *float64 `json:"weight"`
}

type OrderSeed struct {
	ID                int64           `json:"id"`
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	DeliveryAddress   string          `json:"delivery_address"`
	Lat               float64         `json:"lat"`
	Lng               float64         `json:"lng"`
	State             string          `json:"state"`
	Items             []OrderItemSeed `json:"items"`
}

type OrderItemSeed struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type ConfigSeed struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
	Group string `json:"group"`
	// Nil means editable.
	Editable *bool `json:"editable"`
}

func (s *Seed) validate() error {
	for i, u := range s.Users {
		if u.ID <= 0 || strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("invalid user at index %d", i+1)
		}
	}
	for i, p := range s.Products {
		if p.ID <= 0 {
			return fmt.Errorf("invalid product id at index %d: %d", i+1, p.ID)
		}
	}
	for i, o := range s.Orders {
		if o.ID <= 0 {
			return fmt.Errorf("invalid order id at index %d: %d", i+1, o.ID)
		}
		if strings.TrimSpace(o.DeliveryAddress) == "" {
			return fmt.Errorf("order %d: delivery address cannot be empty", o.ID)
		}
	}
	for i, c := range s.Config {
		if strings.TrimSpace(c.Key) == "" {
			return fmt.Errorf("config entry at index %d: key cannot be empty", i+1)
		}
	}
	return nil
}

// Populate the database with users, products, orders and configuration from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	if err := data.validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range data.Users {
		if _, err := tx.Exec(`
		INSERT INTO users (id, username, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			active = EXCLUDED.active;
		`, u.ID, u.Username, u.FirstName, u.LastName, u.Role, u.Active); err != nil {
			return fmt.Errorf("seed: insert user id=%d: %w", u.ID, err)
		}
	}

	for _, p := range data.Products {
		if _, err := tx.Exec(`
		INSERT INTO products (id, name, weight)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			weight = EXCLUDED.weight;
		`, p.ID, p.Name, p.Weight); err != nil {
			return fmt.Errorf("seed: insert product id=%d: %w", p.ID, err)
		}
	}

	for _, o := range data.Orders {
		state := o.State
		if state == "" {
			state = string(domain.OrderPending)
		}

		if _, err := tx.Exec(`
		INSERT INTO orders (id, customer_first_name, customer_last_name, delivery_address, lat, lng, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET customer_first_name = EXCLUDED.customer_first_name,
			customer_last_name = EXCLUDED.customer_last_name,
			delivery_address = EXCLUDED.delivery_address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			state = EXCLUDED.state;
		`, o.ID, o.CustomerFirstName, o.CustomerLastName, o.DeliveryAddress, o.Lat, o.Lng, state); err != nil {
			return fmt.Errorf("seed: insert order id=%d: %w", o.ID, err)
		}

		if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = $1;`, o.ID); err != nil {
			return fmt.Errorf("seed: reset items order_id=%d: %w", o.ID, err)
		}
		for _, it := range o.Items {
			if _, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3);
			`, o.ID, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("seed: insert item order_id=%d product_id=%d: %w", o.ID, it.ProductID, err)
			}
		}
	}

	for _, c := range data.Config {
		typ := c.Type
		if typ == "" {
			typ = string(domain.ConfigString)
		}
		group := c.Group
		if group == "" {
			group = "general"
		}
		editable := c.Editable == nil || *c.Editable

		if _, err := tx.Exec(`
		INSERT INTO system_config (key, value, value_type, config_group, editable)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			value_type = EXCLUDED.value_type,
			config_group = EXCLUDED.config_group,
			editable = EXCLUDED.editable;
		`, c.Key, c.Value, typ, group, editable); err != nil {
			return fmt.Errorf("seed: insert config key=%q: %w", c.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
