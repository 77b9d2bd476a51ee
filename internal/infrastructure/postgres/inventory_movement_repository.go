package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario. Si no trae TransactionID se genera uno.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory_movements (transaction_id, product_id, kind, quantity, occurred_at, reference, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		m.TransactionID, m.ProductID, m.Kind, m.Quantity, m.OccurredAt, m.Reference, m.OrderID,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id::text, product_id, kind, quantity, occurred_at, reference, order_id
		FROM inventory_movements WHERE product_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ProductID, &m.Kind, &m.Quantity, &m.OccurredAt, &m.Reference, &m.OrderID); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountByOrder cuenta las entradas registradas para una orden.
func (r *InventoryMovementRepo) CountByOrder(ctx context.Context, orderID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements WHERE order_id = $1`, orderID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}
