package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ports"
	"route-assignment-service/internal/services"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type stubGenerator struct {
	got services.GenerateRequest
	res *services.GenerationResult
	err error
}

func (s *stubGenerator) Generate(_ context.Context, req services.GenerateRequest) (*services.GenerationResult, error) {
	s.got = req
	return s.res, s.err
}

type stubQueries struct {
	routes []ports.RouteSummary
	detail *services.RouteDetail
	active *services.RouteDetail
	config   domain.ConfigValue
	editable []domain.ConfigValue
	err      error

	driverID     int64
	driverStates []domain.RouteState
}

func (s *stubQueries) ListByStates(_ context.Context, states []domain.RouteState) ([]ports.RouteSummary, error) {
	if len(states) == 0 {
		return nil, &services.PipelineError{Kind: services.KindValidation, Message: services.MsgNoStatesRequested}
	}
	return s.routes, s.err
}

func (s *stubQueries) ListForDriver(_ context.Context, driverID int64, states []domain.RouteState) ([]ports.RouteSummary, error) {
	s.driverID, s.driverStates = driverID, states
	if len(states) == 0 {
		return nil, &services.PipelineError{Kind: services.KindValidation, Message: services.MsgNoStatesRequested}
	}
	return s.routes, s.err
}

func (s *stubQueries) EditableConfig(_ context.Context) ([]domain.ConfigValue, error) {
	return s.editable, s.err
}

func (s *stubQueries) Detail(_ context.Context, id int64) (*services.RouteDetail, error) {
	if s.detail == nil || s.detail.Summary.Route.RouteID != id {
		return nil, fmt.Errorf("route %d: %w", id, services.ErrNotFound)
	}
	return s.detail, nil
}

func (s *stubQueries) ActiveForDriver(_ context.Context, _ int64) (*services.RouteDetail, error) {
	return s.active, s.err
}

func (s *stubQueries) ConfigValue(_ context.Context, key string) (domain.ConfigValue, error) {
	if key != s.config.Key {
		return domain.ConfigValue{}, services.ErrNotFound
	}
	return s.config, nil
}

func newTestRouter(gen *stubGenerator, q *stubQueries, limiter *rate.Limiter) http.Handler {
	return NewRouter(RouterDeps{Generator: gen, Queries: q, Limiter: limiter, Log: zap.NewNop()})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerateRoutesSuccess(t *testing.T) {
	routeID := int64(31)
	gen := &stubGenerator{res: &services.GenerationResult{
		Message: services.MsgGenerationCompleted,
		Routes: []*services.RouteResult{
			{
				RouteID:  &routeID,
				Driver:   &domain.Driver{DriverID: 5, FirstName: "Ana", LastName: "Diaz"},
				Stops:    []domain.RouteStop{{OrderID: 10, VisitOrder: 1}, {OrderID: 11, VisitOrder: 2}},
				Status:   domain.OutcomeSuccess,
				Message:  services.MsgRouteSuccess,
				Geometry: json.RawMessage(`{"type":"LineString","coordinates":[]}`),
				Totals:   &services.Totals{DistanceMeters: 1200, DurationSeconds: 240},
			},
			{
				Driver:  &domain.Driver{DriverID: 6, FirstName: "Luis", LastName: "Rojas"},
				Stops:   []domain.RouteStop{{OrderID: 12, VisitOrder: 1}},
				Status:  domain.OutcomeEngineUnavailable,
				Message: services.MsgEngineUnavailable,
			},
		},
	}}

	rec := do(t, newTestRouter(gen, &stubQueries{}, nil), http.MethodPost, "/rutas/generar",
		`{"pedido_ids":[10,11,12],"repartidor_ids":[5,6]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, []int64{10, 11, 12}, gen.got.OrderIDs)
	assert.Equal(t, []int64{5, 6}, gen.got.DriverIDs)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, services.MsgGenerationCompleted, body["message"])

	routes := body["rutas_asignadas"].([]any)
	require.Len(t, routes, 2)

	first := routes[0].(map[string]any)
	assert.Equal(t, 31.0, first["ruta_db_id"])
	assert.Equal(t, "Ana Diaz", first["repartidor_nombre"])
	assert.Equal(t, []any{
		map[string]any{"id": 10.0, "orden": 1.0},
		map[string]any{"id": 11.0, "orden": 2.0},
	}, first["pedido_ids_ordenados"])
	assert.Equal(t, map[string]any{"distance": 1200.0, "duration": 240.0}, first["summary"])

	second := routes[1].(map[string]any)
	assert.Nil(t, second["ruta_db_id"])
	assert.Equal(t, "error_osrm", second["status"])
	assert.Nil(t, second["geometry"])
	assert.Nil(t, second["summary"])
	assert.Equal(t, []any{}, second["instructions"])
}

func TestGenerateRoutesErrorMapping(t *testing.T) {
	tests := []struct {
		kind   services.ErrorKind
		status int
	}{
		{services.KindValidation, http.StatusBadRequest},
		{services.KindPrecondition, http.StatusBadRequest},
		{services.KindConflict, http.StatusConflict},
		{services.KindGather, http.StatusInternalServerError},
		{services.KindSolver, http.StatusBadGateway},
		{services.KindPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			gen := &stubGenerator{err: &services.PipelineError{Kind: tt.kind, Message: "msg " + string(tt.kind)}}

			rec := do(t, newTestRouter(gen, &stubQueries{}, nil), http.MethodPost, "/rutas/generar",
				`{"pedido_ids":[1],"repartidor_ids":[2]}`)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, "msg "+string(tt.kind), body["message"])
		})
	}
}

func TestGenerateRoutesRejectsBadRequests(t *testing.T) {
	h := newTestRouter(&stubGenerator{}, &stubQueries{}, nil)

	rec := do(t, h, http.MethodGet, "/rutas/generar", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = do(t, h, http.MethodPost, "/rutas/generar", `{"pedido_ids":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.MsgInvalidRequest, decode(t, rec)["message"])

	rec = do(t, h, http.MethodPost, "/rutas/generar", `{"pedido_ids":[1]}{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRoutesRateLimited(t *testing.T) {
	gen := &stubGenerator{res: &services.GenerationResult{Message: services.MsgGenerationCompleted}}
	h := newTestRouter(gen, &stubQueries{}, rate.NewLimiter(rate.Every(time.Hour), 1))

	rec := do(t, h, http.MethodPost, "/rutas/generar", `{"pedido_ids":[1],"repartidor_ids":[2]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/rutas/generar", `{"pedido_ids":[1],"repartidor_ids":[2]}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(&stubGenerator{}, &stubQueries{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func sampleDetail() *services.RouteDetail {
	return &services.RouteDetail{
		Summary: &ports.RouteSummary{
			Route: &domain.Route{
				RouteID:   7,
				DriverID:  5,
				State:     domain.RouteEnCurso,
				CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			},
			DriverName: "Ana Diaz",
		},
		Stops: []ports.RouteStopDetail{
			{OrderID: 10, VisitOrder: 1, StopState: "Pendiente", CustomerName: "Luis Rojas", OrderState: domain.OrderInProcess},
		},
	}
}

func TestRouteQueries(t *testing.T) {
	q := &stubQueries{
		routes: []ports.RouteSummary{*sampleDetail().Summary},
		detail: sampleDetail(),
		config: domain.ConfigValue{Key: "capacidad_maxima_vehiculos", Type: domain.ConfigInteger, Raw: "1800", Value: int64(1800), Group: "rutas"},
	}
	h := newTestRouter(&stubGenerator{}, q, nil)

	rec := do(t, h, http.MethodGet, "/rutas?estados=Asignada,En%20Curso", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Diaz", list[0]["repartidor_nombre"])

	rec = do(t, h, http.MethodGet, "/rutas", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/rutas/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 7.0, body["ruta"].(map[string]any)["id_ruta"])
	assert.Len(t, body["detalles"], 1)

	rec = do(t, h, http.MethodGet, "/rutas/8", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/rutas/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/configuracion?clave=capacidad_maxima_vehiculos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1800.0, decode(t, rec)["valor"])

	rec = do(t, h, http.MethodGet, "/configuracion?clave=otra", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActiveRouteForDriver(t *testing.T) {
	q := &stubQueries{}
	h := newTestRouter(&stubGenerator{}, q, nil)

	rec := do(t, h, http.MethodGet, "/repartidores/5/ruta-activa", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MsgNoActiveRoute, decode(t, rec)["message"])

	q.active = sampleDetail()
	rec = do(t, h, http.MethodGet, "/repartidores/5/ruta-activa", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["ruta"])
}

func TestDriverRoutes(t *testing.T) {
	q := &stubQueries{routes: []ports.RouteSummary{*sampleDetail().Summary}}
	h := newTestRouter(&stubGenerator{}, q, nil)

	rec := do(t, h, http.MethodGet, "/repartidores/5/rutas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), q.driverID)
	assert.Equal(t, services.DefaultDriverStates, q.driverStates)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Len(t, body["rutas"], 1)

	rec = do(t, h, http.MethodGet, "/repartidores/5/rutas?estados=Completada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.RouteState{domain.RouteCompleted}, q.driverStates)

	rec = do(t, h, http.MethodGet, "/repartidores/5/rutas?estados=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/repartidores/0/rutas", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigListWithoutKey(t *testing.T) {
	q := &stubQueries{editable: []domain.ConfigValue{
		{Key: "capacidad_maxima_vehiculos", Type: domain.ConfigInteger, Value: int64(2000), Group: "rutas", Editable: true},
		{Key: "deposito_ubicacion", Type: domain.ConfigJSONObject, Value: map[string]any{"lat": -12.0, "lng": -77.0}, Group: "rutas", Editable: true},
	}}
	h := newTestRouter(&stubGenerator{}, q, nil)

	rec := do(t, h, http.MethodGet, "/configuracion", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	list, ok := body["configuraciones"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "capacidad_maxima_vehiculos", first["clave"])
	assert.Equal(t, true, first["editable_admin"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&stubGenerator{}, &stubQueries{}, nil)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
