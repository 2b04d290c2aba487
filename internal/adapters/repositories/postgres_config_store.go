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
	"strconv"
	"strings"
)

// Postgres-backed implementation of the ConfigStore port.
type PostgresConfigStore struct{ DB *sql.DB }

func NewPostgresConfigStore(db *sql.DB) *PostgresConfigStore {
	return &PostgresConfigStore{DB: db}
}

func (s *PostgresConfigStore) GetConfigValue(
	ctx context.Context,
	key string,
) (_ domain.ConfigValue, err error) {
	defer obs.Time(ctx, "config.GetConfigValue")(&err)

	if s.DB == nil {
		return domain.ConfigValue{}, errors.New("postgres config store: DB is nil")
	}

	q := `
	SELECT key, value, value_type, config_group, editable
	FROM system_config
	WHERE key = $1
	LIMIT 1;
	`

	cv, err := scanConfigValue(s.DB.QueryRowContext(ctx, q, key).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ConfigValue{}, fmt.Errorf("get config %q: %w", key, ports.ErrConfigNotFound)
	}
	if err != nil {
		return domain.ConfigValue{}, fmt.Errorf("get config %q: query system_config table: %w", key, err)
	}

	return cv, nil
}

func (s *PostgresConfigStore) ListEditableConfig(ctx context.Context) (_ []domain.ConfigValue, err error) {
	defer obs.Time(ctx, "config.ListEditableConfig")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres config store: DB is nil")
	}

	q := `
	SELECT key, value, value_type, config_group, editable
	FROM system_config
	WHERE editable
	ORDER BY config_group ASC, key ASC;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list config: query system_config table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ConfigValue, 0, 16)
	for rows.Next() {
		cv, err := scanConfigValue(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list config: scan row: %w", err)
		}
		out = append(out, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list config: row iteration: %w", err)
	}

	return out, nil
}

func scanConfigValue(scan func(dest ...any) error) (domain.ConfigValue, error) {
	var cv domain.ConfigValue
	var typ string
	if err := scan(&cv.Key, &cv.Raw, &typ, &cv.Group, &cv.Editable); err != nil {
		return domain.ConfigValue{}, err
	}

	cv.Type = domain.ConfigType(typ)
	cv.Value = DecodeConfigValue(cv.Type, cv.Raw)
	return cv, nil
}

// DecodeConfigValue converts raw according to its declared type.
// Malformed numbers decode to 0 and malformed JSON to nil so that callers
// can apply their own fallback; string types are returned unchanged.
func DecodeConfigValue(typ domain.ConfigType, raw string) any {
	raw = strings.TrimSpace(raw)

	switch typ {
	case domain.ConfigInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case domain.ConfigFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case domain.ConfigBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		return b
	case domain.ConfigJSONArray, domain.ConfigJSONObject:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil
		}
		return v
	default:
		return raw
	}
}
