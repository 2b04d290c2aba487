package services

import "route-assignment-service/internal/platform/metrics"

// Response of a generation run that reached the aggregation stage.
type GenerationResult struct {
	Message string
	Routes  []*RouteResult
}

// Aggregate collects per-route results in solver order.
func Aggregate(results []*RouteResult) *GenerationResult {
	out := &GenerationResult{
		Message: MsgGenerationCompleted,
		Routes:  make([]*RouteResult, 0, len(results)),
	}

	for _, r := range results {
		metrics.RouteOutcomes.WithLabelValues(string(r.Status)).Inc()
		out.Routes = append(out.Routes, r)
	}

	return out
}
