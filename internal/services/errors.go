package services

import (
	"errors"
	"fmt"
)

// Category of a whole-request failure in the generation pipeline.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindPrecondition ErrorKind = "precondition"
	KindConflict     ErrorKind = "conflict"
	KindGather       ErrorKind = "gather"
	KindSolver       ErrorKind = "solver"
	KindPersistence  ErrorKind = "persistence"
)

// User-facing messages for whole-request failures.
const (
	MsgInvalidRequest      = "Datos inválidos: Se requieren pedido_ids y repartidor_ids."
	MsgNoPendingOrders     = "No se encontraron pedidos pendientes válidos."
	MsgNoActiveDrivers     = "No se encontraron repartidores activos válidos."
	MsgDepotNotFound       = "Configuración 'deposito_ubicacion' no encontrada."
	MsgDepotInvalid        = "Valor de 'deposito_ubicacion' inválido."
	MsgGatherFailed        = "Error al obtener datos iniciales."
	MsgOrdersClaimed       = "Algunos pedidos ya están siendo procesados por otra solicitud."
	MsgSolverFailed        = "Error al calcular las rutas óptimas."
	MsgPersistenceFailed   = "Error de base de datos durante la operación."
	MsgNoStatesRequested   = "No se especificaron estados válidos para buscar."
	MsgNoActiveRoute       = "No hay ruta activa asignada."
	MsgGenerationCompleted = "Proceso de generación de rutas completado."
)

// PipelineError carries a failure kind, a message safe to show to clients,
// and the underlying cause.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newPipelineError(kind ErrorKind, msg string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first PipelineError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
