package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recepciones (cabecera + líneas).
type ReceiptRepo struct {
	q Querier
}

func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create inserta la cabecera. UNIQUE (order_id) impide una segunda recepción (y una segunda entrada) por orden.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO receipts (order_id, received_at, notes)
		VALUES ($1, $2, $3)
		RETURNING id`,
		rc.OrderID, rc.ReceivedAt, rc.Notes,
	).Scan(&rc.ID)
	if err != nil {
		if isUniqueViolation(err, "ux_receipts_order") {
			return domain.Conflict(domain.MsgReceiptExists)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) AddLine(ctx context.Context, line *entity.ReceiptLine) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO receipt_lines (receipt_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`,
		line.ReceiptID, line.ProductID, line.Quantity,
	).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("insert receipt line: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) GetByOrder(ctx context.Context, orderID int64) (*entity.Receipt, error) {
	var rc entity.Receipt
	err := r.q.QueryRow(ctx,
		`SELECT id, order_id, received_at, notes FROM receipts WHERE order_id = $1`, orderID,
	).Scan(&rc.ID, &rc.OrderID, &rc.ReceivedAt, &rc.Notes)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return &rc, nil
}
