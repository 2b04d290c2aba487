package dto

import (
	"encoding/json"
	"route-assignment-service/internal/domain"
	"time"
)

type GenerateRoutesRequest struct {
	PedidoIDs     []int64 `json:"pedido_ids"`
	RepartidorIDs []int64 `json:"repartidor_ids"`
}

type OrderedOrder struct {
	ID    int64 `json:"id"`
	Orden int   `json:"orden"`
}

type RouteTotals struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type AssignedRouteResponse struct {
	RutaDBID           *int64               `json:"ruta_db_id"`
	RepartidorID       int64                `json:"repartidor_id"`
	RepartidorNombre   string               `json:"repartidor_nombre"`
	PedidoIDsOrdenados []OrderedOrder       `json:"pedido_ids_ordenados"`
	Status             string               `json:"status"`
	Message            string               `json:"message"`
	Geometry           json.RawMessage      `json:"geometry"`
	Instructions       []domain.Instruction `json:"instructions"`
	Summary            *RouteTotals         `json:"summary"`
}

type GenerateRoutesResponse struct {
	Status         string                  `json:"status"`
	Message        string                  `json:"message"`
	RutasAsignadas []AssignedRouteResponse `json:"rutas_asignadas"`
}

type RouteSummaryResponse struct {
	IDRuta                int64           `json:"id_ruta"`
	IDRepartidor          int64           `json:"id_repartidor"`
	FechaHoraCreacion     time.Time       `json:"fecha_hora_creacion"`
	EstadoRuta            string          `json:"estado_ruta"`
	DistanciaTotalMetros  float64         `json:"distancia_total_metros"`
	DuracionTotalSegundos float64         `json:"duracion_total_segundos"`
	GeometriaGeoJSON      json.RawMessage `json:"geometria_geojson"`
	RepartidorNombre      string          `json:"repartidor_nombre"`
}

type RouteHeaderResponse struct {
	RouteSummaryResponse
	Instrucciones []domain.Instruction `json:"instrucciones_json"`
}

type RouteStopResponse struct {
	IDPedido         int64   `json:"id_pedido"`
	OrdenVisita      int     `json:"orden_visita"`
	EstadoParada     string  `json:"estado_parada"`
	DireccionEntrega string  `json:"direccion_entrega"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	NombreCliente    string  `json:"nombre_cliente"`
	EstadoPedido     string  `json:"estado_pedido"`
}

type RouteDetailResponse struct {
	Status   string               `json:"status"`
	Ruta     *RouteHeaderResponse `json:"ruta"`
	Detalles []RouteStopResponse  `json:"detalles"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type DriverRoutesResponse struct {
	Status string                 `json:"status"`
	Rutas  []RouteSummaryResponse `json:"rutas"`
}
