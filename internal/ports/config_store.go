package ports

import (
	"context"
	"errors"
	"route-assignment-service/internal/domain"
)

var ErrConfigNotFound = errors.New("configuration key not found")

// Port: typed lookup of system configuration entries.
type ConfigStore interface {
	// Return the decoded value stored under key, or ErrConfigNotFound.
	GetConfigValue(ctx context.Context, key string) (domain.ConfigValue, error)
	// Return entries open to administrators, ordered by group then key.
	ListEditableConfig(ctx context.Context) ([]domain.ConfigValue, error)
}
