package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.SupplierLinkRepository = (*SupplierLinkRepo)(nil)

// SupplierLinkRepo vínculos solicitud↔proveedor.
type SupplierLinkRepo struct {
	q Querier
}

// NewSupplierLinkRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierLinkRepository(q Querier) *SupplierLinkRepo {
	return &SupplierLinkRepo{q: q}
}

// Ensure inserta el vínculo en una sola sentencia; si ya existía no hace nada.
func (r *SupplierLinkRepo) Ensure(ctx context.Context, requestID, supplierID int64, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO request_suppliers (request_id, supplier_id, sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id, supplier_id) DO NOTHING`,
		requestID, supplierID, at,
	)
	if err != nil {
		return false, fmt.Errorf("ensure supplier link: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *SupplierLinkRepo) Exists(ctx context.Context, requestID, supplierID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM request_suppliers WHERE request_id = $1 AND supplier_id = $2)`,
		requestID, supplierID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists supplier link: %w", err)
	}
	return ok, nil
}

func (r *SupplierLinkRepo) ListByRequest(ctx context.Context, requestID int64) ([]*entity.SupplierLink, error) {
	rows, err := r.q.Query(ctx,
		`SELECT request_id, supplier_id, sent_at FROM request_suppliers WHERE request_id = $1 ORDER BY supplier_id`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list supplier links: %w", err)
	}
	defer rows.Close()
	var list []*entity.SupplierLink
	for rows.Next() {
		var l entity.SupplierLink
		if err := rows.Scan(&l.RequestID, &l.SupplierID, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan supplier link: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
