package repository

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.InventoryMovement, error)
	CountByOrder(ctx context.Context, orderID int64) (int, error)
}
