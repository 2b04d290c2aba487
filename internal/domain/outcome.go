package domain

// Classification of a single solver route after materialization.
type RouteOutcome string

const (
	OutcomeSuccess               RouteOutcome = "success"
	OutcomeEngineUnavailable     RouteOutcome = "error_osrm"
	OutcomeEngineInvalidResponse RouteOutcome = "error_osrm_response"
	OutcomeEmptyRoute            RouteOutcome = "empty_route"
)
