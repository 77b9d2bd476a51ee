package repository

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// InventoryRepository existencias por producto.
type InventoryRepository interface {
	// Increment crea la fila con quantity o suma quantity a la existente en una sola sentencia.
	Increment(ctx context.Context, productID int64, quantity int) (*entity.InventoryRecord, error)
	Get(ctx context.Context, productID int64) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID int64) (*entity.InventoryRecord, error)
	List(ctx context.Context) ([]*entity.InventoryRecord, error)
	// SetMinimum fija el mínimo; crea la fila con existencia 0 si el producto nunca tuvo entradas.
	SetMinimum(ctx context.Context, productID int64, minQuantity int) (*entity.InventoryRecord, error)
	// ListBelowMinimum productos con mínimo configurado y existencia <= mínimo.
	ListBelowMinimum(ctx context.Context) ([]*entity.InventoryRecord, error)
}

// ReceiptRepository recepciones de órdenes de compra.
type ReceiptRepository interface {
	// Create devuelve ConflictError si la orden ya tiene recepción.
	Create(ctx context.Context, r *entity.Receipt) error
	AddLine(ctx context.Context, line *entity.ReceiptLine) error
	GetByOrder(ctx context.Context, orderID int64) (*entity.Receipt, error)
}
