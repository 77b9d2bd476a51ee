package entity

import (
	"fmt"
	"time"
)

// DispatchStatus punto de control de entrega de una orden.
type DispatchStatus string

const (
	DispatchNoDespachado DispatchStatus = "NoDespachado"
	DispatchEnRuta       DispatchStatus = "EnRuta"
	DispatchEntregado    DispatchStatus = "Entregado"
)

// ParseDispatchStatus acepta solo NoDespachado, EnRuta o Entregado.
func ParseDispatchStatus(s string) (DispatchStatus, error) {
	switch DispatchStatus(s) {
	case DispatchNoDespachado, DispatchEnRuta, DispatchEntregado:
		return DispatchStatus(s), nil
	}
	return "", fmt.Errorf("estado de despacho inválido %q (NoDespachado/EnRuta/Entregado)", s)
}

// DispatchEvent registro append-only del seguimiento de la orden.
type DispatchEvent struct {
	ID         int64
	OrderID    int64
	Status     DispatchStatus
	OccurredAt time.Time
	Notes      *string
}
