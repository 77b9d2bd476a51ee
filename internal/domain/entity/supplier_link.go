package entity

import "time"

// SupplierLink registra que la solicitud de cotización se envió a un proveedor.
type SupplierLink struct {
	RequestID  int64
	SupplierID int64
	SentAt     time.Time
}
