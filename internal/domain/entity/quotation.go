package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuotationState estado de una cotización.
type QuotationState string

// Estados de la cotización.
const (
	QuotationRecibida  QuotationState = "Recibida"
	QuotationAprobada  QuotationState = "Aprobada"
	QuotationRechazada QuotationState = "Rechazada"
)

// DefaultRejectionReason motivo estampado en las cotizaciones no seleccionadas.
const DefaultRejectionReason = "No seleccionada"

// ParseQuotationState valida el texto contra el conjunto cerrado de estados.
func ParseQuotationState(s string) (QuotationState, error) {
	switch QuotationState(s) {
	case QuotationRecibida, QuotationAprobada, QuotationRechazada:
		return QuotationState(s), nil
	}
	return "", fmt.Errorf("estado de cotización desconocido: %q", s)
}

// Quotation oferta con precio de un proveedor para una solicitud.
type Quotation struct {
	ID              int64
	RequestID       int64
	SupplierID      int64
	Price           decimal.Decimal
	DeliveryTime    *string
	Terms           *string
	State           QuotationState
	RejectionReason *string
	AwardedBy       *int64
	AwardedAt       *time.Time
	CreatedAt       time.Time
}

// QuotationView cotización con nombres de proveedor, producto y solicitante.
type QuotationView struct {
	Quotation
	SupplierName  string
	ProductID     int64
	ProductName   string
	RequesterID   int64
	RequesterName string
	Quantity      int
}

// QuotationFilter filtros opcionales para listar cotizaciones.
type QuotationFilter struct {
	RequestID  *int64
	SupplierID *int64
	State      *QuotationState
}
