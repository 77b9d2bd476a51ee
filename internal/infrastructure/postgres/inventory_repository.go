package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo existencias por producto (tabla inventory).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Increment crea o incrementa la existencia en una sola sentencia (sin leer antes de escribir).
func (r *InventoryRepo) Increment(ctx context.Context, productID int64, quantity int) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory (product_id, quantity_on_hand, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (product_id) DO UPDATE
		SET quantity_on_hand = inventory.quantity_on_hand + EXCLUDED.quantity_on_hand,
		    updated_at = now()
		RETURNING product_id, quantity_on_hand, min_quantity, updated_at`,
		productID, quantity,
	).Scan(&rec.ProductID, &rec.QuantityOnHand, &rec.MinQuantity, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("increment inventory: %w", err)
	}
	return &rec, nil
}

// SetMinimum upsert del mínimo; no toca la existencia de una fila ya creada.
func (r *InventoryRepo) SetMinimum(ctx context.Context, productID int64, minQuantity int) (*entity.InventoryRecord, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO inventory (product_id, quantity_on_hand, min_quantity, updated_at)
		VALUES ($1, 0, $2, now())
		ON CONFLICT (product_id) DO UPDATE
		SET min_quantity = EXCLUDED.min_quantity, updated_at = now()`,
		productID, minQuantity,
	); err != nil {
		if isForeignKeyViolation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("set inventory minimum: %w", err)
	}
	return r.Get(ctx, productID)
}

const inventoryQuery = `
	SELECT i.product_id, p.name, i.quantity_on_hand, i.min_quantity, i.updated_at
	FROM inventory i
	JOIN products p ON p.id = i.product_id`

func scanInventory(row rowScanner) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := row.Scan(&rec.ProductID, &rec.ProductName, &rec.QuantityOnHand, &rec.MinQuantity, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *InventoryRepo) get(ctx context.Context, query string, productID int64) (*entity.InventoryRecord, error) {
	rec, err := scanInventory(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rec, nil
}

// Get obtiene la existencia de un producto; (nil, nil) si nunca ha tenido entradas.
func (r *InventoryRepo) Get(ctx context.Context, productID int64) (*entity.InventoryRecord, error) {
	return r.get(ctx, inventoryQuery+` WHERE i.product_id = $1`, productID)
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.InventoryRecord, error) {
	return r.get(ctx, inventoryQuery+` WHERE i.product_id = $1 FOR UPDATE OF i`, productID)
}

func (r *InventoryRepo) list(ctx context.Context, query string) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *InventoryRepo) List(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return r.list(ctx, inventoryQuery+` ORDER BY p.name, i.product_id`)
}

// ListBelowMinimum mayor déficit primero.
func (r *InventoryRepo) ListBelowMinimum(ctx context.Context) ([]*entity.InventoryRecord, error) {
	return r.list(ctx, inventoryQuery+`
		WHERE i.min_quantity IS NOT NULL AND i.quantity_on_hand <= i.min_quantity
		ORDER BY i.min_quantity - i.quantity_on_hand DESC, i.product_id`)
}
