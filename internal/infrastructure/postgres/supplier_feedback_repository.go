package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.SupplierFeedbackRepository = (*SupplierFeedbackRepo)(nil)

// SupplierFeedbackRepo notificaciones Bien/Mal enviadas a proveedores.
type SupplierFeedbackRepo struct {
	q Querier
}

func NewSupplierFeedbackRepository(q Querier) *SupplierFeedbackRepo {
	return &SupplierFeedbackRepo{q: q}
}

func (r *SupplierFeedbackRepo) Create(ctx context.Context, fb *entity.SupplierFeedback) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO supplier_feedback (order_id, supplier_id, supervisor_id, result, message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		fb.OrderID, fb.SupplierID, fb.SupervisorID, string(fb.Result), fb.Message, fb.SentAt,
	).Scan(&fb.ID)
	if err != nil {
		return fmt.Errorf("insert supplier feedback: %w", err)
	}
	return nil
}

const feedbackQuery = `
	SELECT f.id, f.order_id, f.supplier_id, s.name, f.supervisor_id, f.result, f.message, f.sent_at
	FROM supplier_feedback f
	JOIN suppliers s ON s.id = f.supplier_id`

func scanFeedback(row rowScanner) (*entity.SupplierFeedback, error) {
	var fb entity.SupplierFeedback
	var result string
	if err := row.Scan(&fb.ID, &fb.OrderID, &fb.SupplierID, &fb.SupplierName, &fb.SupervisorID, &result, &fb.Message, &fb.SentAt); err != nil {
		return nil, err
	}
	var err error
	if fb.Result, err = entity.ParseFeedbackResult(result); err != nil {
		return nil, err
	}
	return &fb, nil
}

// GetByID notificación con el nombre del proveedor; (nil, nil) si no existe.
func (r *SupplierFeedbackRepo) GetByID(ctx context.Context, id int64) (*entity.SupplierFeedback, error) {
	fb, err := scanFeedback(r.q.QueryRow(ctx, feedbackQuery+` WHERE f.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier feedback: %w", err)
	}
	return fb, nil
}

// List lista notificaciones (más recientes primero), opcionalmente de una sola orden.
func (r *SupplierFeedbackRepo) List(ctx context.Context, orderID *int64) ([]*entity.SupplierFeedback, error) {
	query := feedbackQuery
	var args []any
	if orderID != nil {
		query += ` WHERE f.order_id = $1`
		args = append(args, *orderID)
	}
	query += ` ORDER BY f.sent_at DESC, f.id DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list supplier feedback: %w", err)
	}
	defer rows.Close()
	var list []*entity.SupplierFeedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier feedback: %w", err)
		}
		list = append(list, fb)
	}
	return list, rows.Err()
}
