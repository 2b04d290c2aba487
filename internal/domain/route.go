package domain

import (
	"encoding/json"
	"time"
)

// Lifecycle state of a persisted route.
type RouteState string

const (
	RouteAssigned  RouteState = "Asignada"
	RouteEnCurso   RouteState = "En Curso"
	RouteCompleted RouteState = "Completada"
)

// One simplified turn instruction taken from a routing engine step.
type Instruction struct {
	Maneuver    string  `json:"maneuver"`
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Name        string  `json:"name"`
}

// Represents a single order position within a route.
// VisitOrder is 1-based and follows the solver's visiting sequence.
type RouteStop struct {
	OrderID    int64
	VisitOrder int
}

// Represents a driver-assigned delivery route as persisted.
// Geometry is kept as the raw GeoJSON returned by the routing engine.
type Route struct {
	RouteID         int64
	DriverID        int64
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        json.RawMessage
	Instructions    []Instruction
	State           RouteState
	CreatedAt       time.Time
	Stops           []RouteStop
}
