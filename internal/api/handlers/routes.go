package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/services"
)

// Generator is the route generation entry point used by RouteHandler.
type Generator interface {
	Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerationResult, error)
}

type RouteHandler struct {
	Generator Generator
}

// Generate assigns the requested pending orders to the requested drivers.
func (h *RouteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.GenerateRoutesRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, services.MsgInvalidRequest)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	res, err := h.Generator.Generate(r.Context(), services.GenerateRequest{
		OrderIDs:  req.PedidoIDs,
		DriverIDs: req.RepartidorIDs,
	})
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	out := dto.GenerateRoutesResponse{
		Status:         "success",
		Message:        res.Message,
		RutasAsignadas: make([]dto.AssignedRouteResponse, 0, len(res.Routes)),
	}
	for _, rr := range res.Routes {
		out.RutasAsignadas = append(out.RutasAsignadas, assignedRoute(rr))
	}

	writeJSON(w, r, http.StatusOK, out)
}

func assignedRoute(rr *services.RouteResult) dto.AssignedRouteResponse {
	ordered := make([]dto.OrderedOrder, 0, len(rr.Stops))
	for _, s := range rr.Stops {
		ordered = append(ordered, dto.OrderedOrder{ID: s.OrderID, Orden: s.VisitOrder})
	}

	instructions := rr.Instructions
	if instructions == nil {
		instructions = []domain.Instruction{}
	}

	var summary *dto.RouteTotals
	if rr.Totals != nil {
		summary = &dto.RouteTotals{Distance: rr.Totals.DistanceMeters, Duration: rr.Totals.DurationSeconds}
	}

	return dto.AssignedRouteResponse{
		RutaDBID:           rr.RouteID,
		RepartidorID:       rr.Driver.DriverID,
		RepartidorNombre:   rr.Driver.FullName(),
		PedidoIDsOrdenados: ordered,
		Status:             string(rr.Status),
		Message:            rr.Message,
		Geometry:           rr.Geometry,
		Instructions:       instructions,
		Summary:            summary,
	}
}
