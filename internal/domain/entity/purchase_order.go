package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderState estado desnormalizado de la orden de compra.
type OrderState string

// Estados de la orden de compra.
const (
	OrderEmitida   OrderState = "Emitida"
	OrderEntregado OrderState = "Entregado"
)

// ParseOrderState valida el texto contra el conjunto cerrado de estados.
func ParseOrderState(s string) (OrderState, error) {
	switch OrderState(s) {
	case OrderEmitida, OrderEntregado:
		return OrderState(s), nil
	}
	return "", fmt.Errorf("estado de orden desconocido: %q", s)
}

// Conformity respuesta SI/NO; vacío significa que aún no se ha registrado.
type Conformity string

const (
	ConformityUnset Conformity = ""
	ConformitySI    Conformity = "SI"
	ConformityNO    Conformity = "NO"
)

// ConformityFrom traduce el booleano recibido a SI/NO.
func ConformityFrom(conforme bool) Conformity {
	if conforme {
		return ConformitySI
	}
	return ConformityNO
}

// PurchaseOrder orden de compra emitida al proveedor adjudicado (una por cotización).
type PurchaseOrder struct {
	ID                   int64
	QuotationID          int64
	SupplierID           int64
	Total                decimal.Decimal
	State                OrderState
	CreatedAt            time.Time
	SupervisorConformity Conformity
	SupervisorID         *int64
	SupervisorComment    *string
	EmployeeAcceptance   Conformity
	EmployeeID           *int64
	EmployeeComment      *string
}

// OrderOrigin datos de la solicitud de origen obtenidos recorriendo cotización → solicitud.
type OrderOrigin struct {
	OrderID     int64
	QuotationID int64
	RequestID   int64
	RequesterID int64
	ProductID   int64
	Quantity    int
}

// OrderView orden enriquecida con nombres y el historial de despacho.
type OrderView struct {
	PurchaseOrder
	RequestID     int64
	Price         decimal.Decimal
	SupplierName  string
	RequesterID   int64
	RequesterName string
	ProductID     int64
	ProductName   string
	Quantity      int
	Tracking      []DispatchEvent
}

// OrderFilter filtros opcionales para listar órdenes.
type OrderFilter struct {
	State      *OrderState
	SupplierID *int64
}
