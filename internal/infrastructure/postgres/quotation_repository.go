package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.QuotationRepository = (*QuotationRepo)(nil)

// QuotationRepo cotizaciones sobre PostgreSQL.
type QuotationRepo struct {
	q Querier
}

// NewQuotationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuotationRepository(q Querier) *QuotationRepo {
	return &QuotationRepo{q: q}
}

const quotationColumns = `q.id, q.request_id, q.supplier_id, q.price, q.delivery_time, q.terms, q.state,
	q.rejection_reason, q.awarded_by, q.awarded_at, q.created_at`

func scanQuotation(row rowScanner, extra ...any) (*entity.Quotation, error) {
	var qt entity.Quotation
	var state string
	dest := []any{&qt.ID, &qt.RequestID, &qt.SupplierID, &qt.Price, &qt.DeliveryTime, &qt.Terms, &state,
		&qt.RejectionReason, &qt.AwardedBy, &qt.AwardedAt, &qt.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	st, err := entity.ParseQuotationState(state)
	if err != nil {
		return nil, err
	}
	qt.State = st
	return &qt, nil
}

// Create inserta la cotización. La FK contra request_suppliers y el UNIQUE (request_id, supplier_id)
// cubren la carrera entre la verificación del caso de uso y el insert.
func (r *QuotationRepo) Create(ctx context.Context, qt *entity.Quotation) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO quotations (request_id, supplier_id, price, delivery_time, terms, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		qt.RequestID, qt.SupplierID, qt.Price, qt.DeliveryTime, qt.Terms, string(qt.State),
	).Scan(&qt.ID, &qt.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "ux_quotations_request_supplier"):
			return domain.Conflict(domain.MsgAlreadyQuoted)
		case isForeignKeyViolation(err):
			return domain.Conflict(domain.MsgNotSentToSupplier)
		}
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuotationRepo) GetByID(ctx context.Context, id int64) (*entity.Quotation, error) {
	qt, err := scanQuotation(r.q.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations q WHERE q.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return qt, nil
}

func (r *QuotationRepo) ExistsForPair(ctx context.Context, requestID, supplierID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quotations WHERE request_id = $1 AND supplier_id = $2)`,
		requestID, supplierID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists quotation: %w", err)
	}
	return ok, nil
}

// LockByRequest bloquea las cotizaciones de la solicitud en orden de id (orden fijo evita interbloqueos).
func (r *QuotationRepo) LockByRequest(ctx context.Context, requestID int64) ([]*entity.Quotation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+quotationColumns+` FROM quotations q WHERE q.request_id = $1 ORDER BY q.id FOR UPDATE`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("lock quotations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Quotation
	for rows.Next() {
		qt, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		list = append(list, qt)
	}
	return list, rows.Err()
}

// MarkAwarded marca la cotización como Aprobada. El índice parcial ux_quotations_one_awarded
// rechaza un segundo ganador para la misma solicitud.
func (r *QuotationRepo) MarkAwarded(ctx context.Context, id, awarderID int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE quotations SET state = 'Aprobada', rejection_reason = NULL, awarded_by = $2, awarded_at = $3
		WHERE id = $1`,
		id, awarderID, at,
	)
	if err != nil {
		if isUniqueViolation(err, "ux_quotations_one_awarded") {
			return domain.Conflict(domain.MsgSiblingAwarded)
		}
		return fmt.Errorf("mark quotation awarded: %w", err)
	}
	return nil
}

// RejectSiblings rechaza el resto de cotizaciones de la solicitud que aún no estén rechazadas.
func (r *QuotationRepo) RejectSiblings(ctx context.Context, requestID, winnerID int64, reason string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE quotations SET state = 'Rechazada', rejection_reason = $3
		WHERE request_id = $1 AND id <> $2 AND state <> 'Rechazada'`,
		requestID, winnerID, reason,
	)
	if err != nil {
		return 0, fmt.Errorf("reject sibling quotations: %w", err)
	}
	return cmd.RowsAffected(), nil
}

const quotationViewQuery = `
	SELECT ` + quotationColumns + `, s.name, r.product_id, p.name, r.requester_id, e.name, r.quantity
	FROM quotations q
	JOIN purchase_requests r ON r.id = q.request_id
	JOIN suppliers s ON s.id = q.supplier_id
	JOIN products p ON p.id = r.product_id
	JOIN employees e ON e.id = r.requester_id`

func scanQuotationView(row rowScanner) (*entity.QuotationView, error) {
	var v entity.QuotationView
	qt, err := scanQuotation(row, &v.SupplierName, &v.ProductID, &v.ProductName, &v.RequesterID, &v.RequesterName, &v.Quantity)
	if err != nil {
		return nil, err
	}
	v.Quotation = *qt
	return &v, nil
}

func (r *QuotationRepo) listViews(ctx context.Context, query string, args ...any) ([]*entity.QuotationView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()
	var list []*entity.QuotationView
	for rows.Next() {
		v, err := scanQuotationView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *QuotationRepo) GetView(ctx context.Context, id int64) (*entity.QuotationView, error) {
	v, err := scanQuotationView(r.q.QueryRow(ctx, quotationViewQuery+` WHERE q.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quotation view: %w", err)
	}
	return v, nil
}

// List lista cotizaciones enriquecidas, con filtros opcionales.
func (r *QuotationRepo) List(ctx context.Context, filter entity.QuotationFilter) ([]*entity.QuotationView, error) {
	query := quotationViewQuery + ` WHERE 1 = 1`
	var args []any
	pos := 1
	if filter.RequestID != nil {
		query += fmt.Sprintf(" AND q.request_id = $%d", pos)
		args = append(args, *filter.RequestID)
		pos++
	}
	if filter.SupplierID != nil {
		query += fmt.Sprintf(" AND q.supplier_id = $%d", pos)
		args = append(args, *filter.SupplierID)
		pos++
	}
	if filter.State != nil {
		query += fmt.Sprintf(" AND q.state = $%d", pos)
		args = append(args, string(*filter.State))
	}
	query += ` ORDER BY q.request_id DESC, q.price ASC, q.id`
	return r.listViews(ctx, query, args...)
}

// ListPendingAward cotizaciones Recibida de solicitudes sin ganador: solicitud más reciente primero, luego la más barata.
func (r *QuotationRepo) ListPendingAward(ctx context.Context) ([]*entity.QuotationView, error) {
	return r.listViews(ctx, quotationViewQuery+`
		WHERE q.state = 'Recibida'
		  AND NOT EXISTS (SELECT 1 FROM quotations a WHERE a.request_id = q.request_id AND a.state = 'Aprobada')
		ORDER BY q.request_id DESC, q.price ASC, q.id`)
}
