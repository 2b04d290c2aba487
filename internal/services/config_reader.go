package services

import (
	"context"
	"encoding/json"
	"errors"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DepotConfigKey    = "deposito_ubicacion"
	CapacityConfigKey = "capacidad_maxima_vehiculos"
	DefaultCapacity   = 2000
)

type depotValue struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ReadDepot resolves the depot coordinate. A missing or malformed entry is a
// PreconditionError; store failures are reported as gather errors.
func ReadDepot(ctx context.Context, store ports.ConfigStore) (domain.Coordinates, error) {
	cv, err := store.GetConfigValue(ctx, DepotConfigKey)
	if errors.Is(err, ports.ErrConfigNotFound) {
		return domain.Coordinates{}, newPipelineError(KindPrecondition, MsgDepotNotFound, err)
	}
	if err != nil {
		return domain.Coordinates{}, newPipelineError(KindGather, MsgGatherFailed, err)
	}

	raw := strings.TrimSpace(cv.Raw)
	if raw == "" {
		return domain.Coordinates{}, newPipelineError(KindPrecondition, MsgDepotNotFound, nil)
	}

	var v depotValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.Coordinates{}, newPipelineError(KindPrecondition, MsgDepotInvalid, err)
	}
	if v.Lat == nil || v.Lng == nil {
		return domain.Coordinates{}, newPipelineError(KindPrecondition, MsgDepotInvalid, nil)
	}

	return domain.Coordinates{Lat: *v.Lat, Lng: *v.Lng}, nil
}

// ReadCapacity returns the configured vehicle capacity, or DefaultCapacity
// when the entry is absent, unreadable or not a positive integer.
func ReadCapacity(ctx context.Context, store ports.ConfigStore, log *zap.Logger) int {
	cv, err := store.GetConfigValue(ctx, CapacityConfigKey)
	if err != nil {
		if !errors.Is(err, ports.ErrConfigNotFound) {
			log.Warn("read capacity failed, using default", zap.Error(err), zap.Int("default", DefaultCapacity))
		}
		return DefaultCapacity
	}

	n, err := strconv.Atoi(strings.TrimSpace(cv.Raw))
	if err != nil || n <= 0 {
		log.Warn("malformed capacity, using default", zap.String("raw", cv.Raw), zap.Int("default", DefaultCapacity))
		return DefaultCapacity
	}

	return n
}
