package dto

import "time"

// InventoryItemResponse existencias de un producto.
type InventoryItemResponse struct {
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name,omitempty"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	MinQuantity    *int      `json:"min_quantity,omitempty"`
	BelowMinimum   bool      `json:"below_minimum"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetMinimumRequest body para PUT /api/inventario/:productoId/minimo.
type SetMinimumRequest struct {
	MinQuantity *int `json:"min_quantity"`
}

// Estados de un producto en la revisión de reorden.
const (
	ReorderCreated = "creada"
	ReorderPending = "pendiente"
)

// ReorderItemResponse resultado de la revisión para un producto bajo mínimo.
type ReorderItemResponse struct {
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name,omitempty"`
	QuantityOnHand    int    `json:"quantity_on_hand"`
	MinQuantity       int    `json:"min_quantity"`
	SuggestedQuantity int    `json:"suggested_quantity"`
	RequestID         *int64 `json:"request_id,omitempty"`
	Status            string `json:"status"`
}

// ReorderReviewResponse resumen de una revisión de reorden.
type ReorderReviewResponse struct {
	Items   []ReorderItemResponse `json:"items"`
	Created int                   `json:"created"`
}

// InventoryMovementResponse movimiento de inventario (solo entradas por compra).
type InventoryMovementResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	ProductID     int64     `json:"product_id"`
	Kind          string    `json:"kind"`
	Quantity      int       `json:"quantity"`
	OccurredAt    time.Time `json:"occurred_at"`
	Reference     string    `json:"reference"`
	OrderID       *int64    `json:"order_id,omitempty"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []InventoryMovementResponse `json:"items"`
	Page  PageResponse                `json:"page"`
}
