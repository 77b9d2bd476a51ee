package entity

import "time"

// Receipt encabezado de recepción; como máximo uno por orden de compra.
type Receipt struct {
	ID         int64
	OrderID    int64
	ReceivedAt time.Time
	Notes      *string
}

// ReceiptLine detalle de la recepción (producto y cantidad de la solicitud de origen).
type ReceiptLine struct {
	ID        int64
	ReceiptID int64
	ProductID int64
	Quantity  int
}
