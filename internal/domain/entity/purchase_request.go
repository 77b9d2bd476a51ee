package entity

import (
	"fmt"
	"time"
)

// RequestState estado de una solicitud de compra.
type RequestState string

// Estados de la solicitud de compra.
const (
	RequestCreada              RequestState = "Creada"
	RequestRevisada            RequestState = "Revisada"
	RequestAprobada            RequestState = "Aprobada"
	RequestRechazada           RequestState = "Rechazada"
	RequestEnviadaAProveedores RequestState = "EnviadaAProveedores"
	RequestSeleccionada        RequestState = "Seleccionada"
)

var requestStates = map[string]RequestState{
	string(RequestCreada):              RequestCreada,
	string(RequestRevisada):            RequestRevisada,
	string(RequestAprobada):            RequestAprobada,
	string(RequestRechazada):           RequestRechazada,
	string(RequestEnviadaAProveedores): RequestEnviadaAProveedores,
	string(RequestSeleccionada):        RequestSeleccionada,
}

// ParseRequestState valida el texto contra el conjunto cerrado de estados (comparación exacta).
func ParseRequestState(s string) (RequestState, error) {
	st, ok := requestStates[s]
	if !ok {
		return "", fmt.Errorf("estado de solicitud desconocido: %q", s)
	}
	return st, nil
}

// Editable indica si la solicitud todavía admite cambios de cantidad/motivo.
// Aprobada, Rechazada, EnviadaAProveedores y Seleccionada se consideran finales para edición.
func (s RequestState) Editable() bool {
	return s == RequestCreada || s == RequestRevisada
}

// Decided indica si el jefe ya tomó una decisión (o el flujo avanzó más allá de ella).
func (s RequestState) Decided() bool {
	return !s.Editable()
}

// PurchaseRequest solicitud de compra creada por un empleado.
type PurchaseRequest struct {
	ID              int64
	RequesterID     int64
	ProductID       int64
	Quantity        int
	Reason          *string
	State           RequestState
	CreatedAt       time.Time
	ReviewerID      *int64
	ReviewerComment *string
	ReviewedAt      *time.Time
}

// RequestView solicitud enriquecida con nombres del catálogo (solo lectura).
type RequestView struct {
	PurchaseRequest
	RequesterName string
	ProductName   string
}

// RequestFilter filtros opcionales para listar solicitudes.
type RequestFilter struct {
	State       *RequestState
	RequesterID *int64
}
