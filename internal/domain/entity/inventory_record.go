package entity

import "time"

// InventoryRecord existencias actuales de un producto (una fila por producto).
type InventoryRecord struct {
	ProductID      int64
	ProductName    string
	QuantityOnHand int
	MinQuantity    *int // nil: el producto no participa en la revisión de reorden
	UpdatedAt      time.Time
}

// BelowMinimum indica si la existencia está en o por debajo del mínimo configurado.
func (r InventoryRecord) BelowMinimum() bool {
	return r.MinQuantity != nil && r.QuantityOnHand <= *r.MinQuantity
}

// SuggestedReorder cantidad a pedir para llegar al doble del mínimo; al menos 1.
func (r InventoryRecord) SuggestedReorder() int {
	if r.MinQuantity == nil {
		return 0
	}
	qty := 2*(*r.MinQuantity) - r.QuantityOnHand
	if qty < 1 {
		return 1
	}
	return qty
}
