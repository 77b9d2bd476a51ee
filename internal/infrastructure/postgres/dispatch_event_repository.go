package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.DispatchEventRepository = (*DispatchEventRepo)(nil)

// DispatchEventRepo historial de despacho (tabla order_tracking, solo inserciones).
type DispatchEventRepo struct {
	q Querier
}

func NewDispatchEventRepository(q Querier) *DispatchEventRepo {
	return &DispatchEventRepo{q: q}
}

// Append inserta el evento con la hora del servidor de BD (default now()) y la devuelve en ev.OccurredAt.
// Todos los eventos del historial comparten así el mismo reloj.
func (r *DispatchEventRepo) Append(ctx context.Context, ev *entity.DispatchEvent) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_tracking (order_id, status, notes)
		VALUES ($1, $2, $3)
		RETURNING id, occurred_at`,
		ev.OrderID, string(ev.Status), ev.Notes,
	).Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("append dispatch event: %w", err)
	}
	return nil
}

func (r *DispatchEventRepo) ListByOrder(ctx context.Context, orderID int64) ([]entity.DispatchEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, status, occurred_at, notes
		FROM order_tracking WHERE order_id = $1
		ORDER BY occurred_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list dispatch events: %w", err)
	}
	defer rows.Close()
	var list []entity.DispatchEvent
	for rows.Next() {
		var ev entity.DispatchEvent
		var status string
		if err := rows.Scan(&ev.ID, &ev.OrderID, &status, &ev.OccurredAt, &ev.Notes); err != nil {
			return nil, fmt.Errorf("scan dispatch event: %w", err)
		}
		if ev.Status, err = entity.ParseDispatchStatus(status); err != nil {
			return nil, err
		}
		list = append(list, ev)
	}
	return list, rows.Err()
}
