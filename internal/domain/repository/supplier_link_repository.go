package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// SupplierLinkRepository puerto de los vínculos solicitud↔proveedor.
type SupplierLinkRepository interface {
	// Ensure inserta el vínculo si no existe (upsert condicional). created=false si ya estaba.
	Ensure(ctx context.Context, requestID, supplierID int64, at time.Time) (created bool, err error)
	Exists(ctx context.Context, requestID, supplierID int64) (bool, error)
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.SupplierLink, error)
}
