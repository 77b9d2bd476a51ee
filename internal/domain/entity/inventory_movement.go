package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementKindPurchaseEntry = "Entrada por compra"
)

// InventoryMovement registro append-only de cada entrada al inventario.
type InventoryMovement struct {
	ID            int64
	TransactionID string // UUID que agrupa los movimientos de una misma recepción
	ProductID     int64
	Kind          string
	Quantity      int
	OccurredAt    time.Time
	Reference     string // p. ej. "OC:12;RCV:7"
	OrderID       *int64
}
