package handlers

import (
	"context"
	"errors"
	"net/http"
	"route-assignment-service/internal/api/dto"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"route-assignment-service/internal/services"
	"strconv"
	"strings"
)

// Queries is the read-side service used by QueryHandler.
type Queries interface {
	ListByStates(ctx context.Context, states []domain.RouteState) ([]ports.RouteSummary, error)
	ListForDriver(ctx context.Context, driverID int64, states []domain.RouteState) ([]ports.RouteSummary, error)
	Detail(ctx context.Context, routeID int64) (*services.RouteDetail, error)
	ActiveForDriver(ctx context.Context, driverID int64) (*services.RouteDetail, error)
	ConfigValue(ctx context.Context, key string) (domain.ConfigValue, error)
	EditableConfig(ctx context.Context) ([]domain.ConfigValue, error)
}

type QueryHandler struct {
	Queries Queries
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func routeSummary(s *ports.RouteSummary) dto.RouteSummaryResponse {
	return dto.RouteSummaryResponse{
		IDRuta:                s.Route.RouteID,
		IDRepartidor:          s.Route.DriverID,
		FechaHoraCreacion:     s.Route.CreatedAt,
		EstadoRuta:            string(s.Route.State),
		DistanciaTotalMetros:  s.Route.DistanceMeters,
		DuracionTotalSegundos: s.Route.DurationSeconds,
		GeometriaGeoJSON:      s.Route.Geometry,
		RepartidorNombre:      s.DriverName,
	}
}

func routeDetail(d *services.RouteDetail) dto.RouteDetailResponse {
	instructions := d.Summary.Route.Instructions
	if instructions == nil {
		instructions = []domain.Instruction{}
	}

	stops := make([]dto.RouteStopResponse, 0, len(d.Stops))
	for _, s := range d.Stops {
		stops = append(stops, dto.RouteStopResponse{
			IDPedido:         s.OrderID,
			OrdenVisita:      s.VisitOrder,
			EstadoParada:     s.StopState,
			DireccionEntrega: s.DeliveryAddress,
			Lat:              s.Location.Lat,
			Lng:              s.Location.Lng,
			NombreCliente:    s.CustomerName,
			EstadoPedido:     string(s.OrderState),
		})
	}

	return dto.RouteDetailResponse{
		Status: "success",
		Ruta: &dto.RouteHeaderResponse{
			RouteSummaryResponse: routeSummary(d.Summary),
			Instrucciones:        instructions,
		},
		Detalles: stops,
	}
}

// List returns routes whose state is in the comma separated "estados" parameter.
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	routes, err := h.Queries.ListByStates(r.Context(), services.ParseStates(r.URL.Query().Get("estados")))
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	out := make([]dto.RouteSummaryResponse, 0, len(routes))
	for i := range routes {
		out = append(out, routeSummary(&routes[i]))
	}

	writeJSON(w, r, http.StatusOK, out)
}

// DriverRoutes lists a driver's route headers. Without an "estados" parameter
// assigned and in-progress routes are returned.
func (h *QueryHandler) DriverRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	driverID, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "ID de repartidor inválido.")
		return
	}

	states := services.DefaultDriverStates
	if q := r.URL.Query(); q.Has("estados") {
		states = services.ParseStates(q.Get("estados"))
	}

	routes, err := h.Queries.ListForDriver(r.Context(), driverID, states)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	out := make([]dto.RouteSummaryResponse, 0, len(routes))
	for i := range routes {
		out = append(out, routeSummary(&routes[i]))
	}

	writeJSON(w, r, http.StatusOK, dto.DriverRoutesResponse{Status: "success", Rutas: out})
}

func (h *QueryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "ID de ruta inválido.")
		return
	}

	detail, err := h.Queries.Detail(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Ruta no encontrada.")
		return
	}
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeDetail(detail))
}

// ActiveRoute returns the driver's route in progress, if any.
func (h *QueryHandler) ActiveRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	driverID, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "ID de repartidor inválido.")
		return
	}

	detail, err := h.Queries.ActiveForDriver(r.Context(), driverID)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	if detail == nil {
		writeJSON(w, r, http.StatusOK, dto.MessageResponse{Status: "success", Message: services.MsgNoActiveRoute})
		return
	}

	writeJSON(w, r, http.StatusOK, routeDetail(detail))
}

func configValue(cv domain.ConfigValue) dto.ConfigValueResponse {
	return dto.ConfigValueResponse{
		Clave:         cv.Key,
		Valor:         cv.Value,
		TipoDato:      string(cv.Type),
		Grupo:         cv.Group,
		EditableAdmin: cv.Editable,
	}
}

// Config returns the entry named by "clave", or every editable entry when
// no key is given.
func (h *QueryHandler) Config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("clave"))
	if key == "" {
		values, err := h.Queries.EditableConfig(r.Context())
		if err != nil {
			writePipelineError(w, r, err)
			return
		}

		out := make([]dto.ConfigValueResponse, 0, len(values))
		for _, cv := range values {
			out = append(out, configValue(cv))
		}
		writeJSON(w, r, http.StatusOK, dto.ConfigListResponse{Status: "success", Configuraciones: out})
		return
	}

	cv, err := h.Queries.ConfigValue(r.Context(), key)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Configuración no encontrada.")
		return
	}
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, configValue(cv))
}
