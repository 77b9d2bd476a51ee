package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)

// PurchaseRequestRepo solicitudes de compra sobre PostgreSQL (usable con pool o tx).
type PurchaseRequestRepo struct {
	q Querier
}

// NewPurchaseRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRequestRepository(q Querier) *PurchaseRequestRepo {
	return &PurchaseRequestRepo{q: q}
}

const requestColumns = `r.id, r.requester_id, r.product_id, r.quantity, r.reason, r.state, r.created_at,
	r.reviewer_id, r.reviewer_comment, r.reviewed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, extra ...any) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	var state string
	dest := []any{&pr.ID, &pr.RequesterID, &pr.ProductID, &pr.Quantity, &pr.Reason, &state, &pr.CreatedAt,
		&pr.ReviewerID, &pr.ReviewerComment, &pr.ReviewedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	st, err := entity.ParseRequestState(state)
	if err != nil {
		return nil, err
	}
	pr.State = st
	return &pr, nil
}

// Create persiste la solicitud y completa ID y CreatedAt.
func (r *PurchaseRequestRepo) Create(ctx context.Context, req *entity.PurchaseRequest) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_requests (requester_id, product_id, quantity, reason, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		req.RequesterID, req.ProductID, req.Quantity, req.Reason, string(req.State),
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("solicitante o producto inexistente")
		}
		return fmt.Errorf("insert purchase request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *PurchaseRequestRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM purchase_requests r WHERE r.id = $1`, id)
}

// GetForUpdate obtiene la solicitud bloqueando la fila hasta el fin de la transacción.
func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM purchase_requests r WHERE r.id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRequestRepo) get(ctx context.Context, query string, id int64) (*entity.PurchaseRequest, error) {
	pr, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase request: %w", err)
	}
	return pr, nil
}

// Revise aplica cantidad, motivo y estado solo si el estado almacenado sigue siendo expected.
func (r *PurchaseRequestRepo) Revise(ctx context.Context, req *entity.PurchaseRequest, expected entity.RequestState) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_requests SET quantity = $2, reason = $3, state = $4
		WHERE id = $1 AND state = $5`,
		req.ID, req.Quantity, req.Reason, string(req.State), string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("revise purchase request: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// SetDecision registra aprobación o rechazo.
func (r *PurchaseRequestRepo) SetDecision(ctx context.Context, id int64, state entity.RequestState, reviewerID int64, comment *string, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_requests SET state = $2, reviewer_id = $3, reviewer_comment = $4, reviewed_at = $5
		WHERE id = $1`,
		id, string(state), reviewerID, comment, at,
	)
	if err != nil {
		return false, fmt.Errorf("set request decision: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// UpdateState cambia solo el estado.
func (r *PurchaseRequestRepo) UpdateState(ctx context.Context, id int64, state entity.RequestState) error {
	if _, err := r.q.Exec(ctx, `UPDATE purchase_requests SET state = $2 WHERE id = $1`, id, string(state)); err != nil {
		return fmt.Errorf("update request state: %w", err)
	}
	return nil
}

const requestViewQuery = `
	SELECT ` + requestColumns + `, e.name, p.name
	FROM purchase_requests r
	JOIN employees e ON e.id = r.requester_id
	JOIN products p ON p.id = r.product_id`

func scanRequestView(row rowScanner) (*entity.RequestView, error) {
	var v entity.RequestView
	pr, err := scanRequest(row, &v.RequesterName, &v.ProductName)
	if err != nil {
		return nil, err
	}
	v.PurchaseRequest = *pr
	return &v, nil
}

// GetView obtiene la solicitud con nombre de solicitante y producto.
// HasOpenForProduct una solicitud sigue abierta hasta que la orden que originó tiene recepción.
func (r *PurchaseRequestRepo) HasOpenForProduct(ctx context.Context, productID int64) (bool, error) {
	var open bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM purchase_requests r
			WHERE r.product_id = $1
			  AND r.state <> 'Rechazada'
			  AND NOT EXISTS (
				SELECT 1
				FROM quotations q
				JOIN purchase_orders o ON o.quotation_id = q.id
				JOIN receipts rc ON rc.order_id = o.id
				WHERE q.request_id = r.id
			  )
		)`, productID,
	).Scan(&open)
	if err != nil {
		return false, fmt.Errorf("open requests for product: %w", err)
	}
	return open, nil
}

func (r *PurchaseRequestRepo) GetView(ctx context.Context, id int64) (*entity.RequestView, error) {
	v, err := scanRequestView(r.q.QueryRow(ctx, requestViewQuery+` WHERE r.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request view: %w", err)
	}
	return v, nil
}

// List lista solicitudes (más recientes primero) con filtros opcionales.
func (r *PurchaseRequestRepo) List(ctx context.Context, filter entity.RequestFilter) ([]*entity.RequestView, error) {
	query := requestViewQuery + ` WHERE 1 = 1`
	var args []any
	pos := 1
	if filter.State != nil {
		query += fmt.Sprintf(" AND r.state = $%d", pos)
		args = append(args, string(*filter.State))
		pos++
	}
	if filter.RequesterID != nil {
		query += fmt.Sprintf(" AND r.requester_id = $%d", pos)
		args = append(args, *filter.RequesterID)
	}
	query += ` ORDER BY r.id DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.RequestView
	for rows.Next() {
		v, err := scanRequestView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
