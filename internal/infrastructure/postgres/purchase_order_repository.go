package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderColumns = `o.id, o.quotation_id, o.supplier_id, o.total, o.state, o.created_at,
	o.supervisor_conformity, o.supervisor_id, o.supervisor_comment,
	o.employee_acceptance, o.employee_id, o.employee_comment`

func scanOrder(row rowScanner, extra ...any) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var state string
	var supervisor, employee *string
	dest := []any{&o.ID, &o.QuotationID, &o.SupplierID, &o.Total, &state, &o.CreatedAt,
		&supervisor, &o.SupervisorID, &o.SupervisorComment,
		&employee, &o.EmployeeID, &o.EmployeeComment}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	st, err := entity.ParseOrderState(state)
	if err != nil {
		return nil, err
	}
	o.State = st
	o.SupervisorConformity = conformityFromColumn(supervisor)
	o.EmployeeAcceptance = conformityFromColumn(employee)
	return &o, nil
}

func conformityFromColumn(s *string) entity.Conformity {
	if s == nil {
		return entity.ConformityUnset
	}
	return entity.Conformity(*s)
}

// Create inserta la orden. UNIQUE (quotation_id) garantiza una sola orden por cotización.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_orders (quotation_id, supplier_id, total, state)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		o.QuotationID, o.SupplierID, o.Total, string(o.State),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "ux_purchase_orders_quotation") {
			return domain.Conflict(domain.MsgOrderExists)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query string, arg int64) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return o, nil
}

// GetByID obtiene una orden por ID.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders o WHERE o.id = $1`, id)
}

// GetForUpdate obtiene la orden bloqueando la fila.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders o WHERE o.id = $1 FOR UPDATE`, id)
}

// GetByQuotation obtiene la orden emitida para una cotización, si existe.
func (r *PurchaseOrderRepo) GetByQuotation(ctx context.Context, quotationID int64) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders o WHERE o.quotation_id = $1`, quotationID)
}

// GetOrigin recorre orden → cotización → solicitud para obtener producto y cantidad.
func (r *PurchaseOrderRepo) GetOrigin(ctx context.Context, id int64) (*entity.OrderOrigin, error) {
	var og entity.OrderOrigin
	err := r.q.QueryRow(ctx, `
		SELECT o.id, q.id, r.id, r.requester_id, r.product_id, r.quantity
		FROM purchase_orders o
		JOIN quotations q ON q.id = o.quotation_id
		JOIN purchase_requests r ON r.id = q.request_id
		WHERE o.id = $1`, id,
	).Scan(&og.OrderID, &og.QuotationID, &og.RequestID, &og.RequesterID, &og.ProductID, &og.Quantity)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order origin: %w", err)
	}
	return &og, nil
}

// MarkDelivered pasa la orden a Entregado.
func (r *PurchaseOrderRepo) MarkDelivered(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `UPDATE purchase_orders SET state = 'Entregado' WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) SetSupervisorConformity(ctx context.Context, id, supervisorID int64, c entity.Conformity, comment *string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET supervisor_conformity = $2, supervisor_id = $3, supervisor_comment = $4
		WHERE id = $1`,
		id, string(c), supervisorID, comment,
	)
	if err != nil {
		return fmt.Errorf("set supervisor conformity: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) SetEmployeeAcceptance(ctx context.Context, id, employeeID int64, c entity.Conformity, comment *string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET employee_acceptance = $2, employee_id = $3, employee_comment = $4
		WHERE id = $1`,
		id, string(c), employeeID, comment,
	)
	if err != nil {
		return fmt.Errorf("set employee acceptance: %w", err)
	}
	return nil
}

const orderViewQuery = `
	SELECT ` + orderColumns + `, q.request_id, q.price, s.name, r.requester_id, e.name, r.product_id, p.name, r.quantity
	FROM purchase_orders o
	JOIN quotations q ON q.id = o.quotation_id
	JOIN purchase_requests r ON r.id = q.request_id
	JOIN suppliers s ON s.id = o.supplier_id
	JOIN employees e ON e.id = r.requester_id
	JOIN products p ON p.id = r.product_id`

func scanOrderView(row rowScanner) (*entity.OrderView, error) {
	var v entity.OrderView
	o, err := scanOrder(row, &v.RequestID, &v.Price, &v.SupplierName, &v.RequesterID, &v.RequesterName,
		&v.ProductID, &v.ProductName, &v.Quantity)
	if err != nil {
		return nil, err
	}
	v.PurchaseOrder = *o
	return &v, nil
}

// GetView obtiene la cabecera enriquecida (sin historial; lo agrega el caso de uso).
func (r *PurchaseOrderRepo) GetView(ctx context.Context, id int64) (*entity.OrderView, error) {
	v, err := scanOrderView(r.q.QueryRow(ctx, orderViewQuery+` WHERE o.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order view: %w", err)
	}
	return v, nil
}

// List lista órdenes enriquecidas, más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.OrderView, error) {
	query := orderViewQuery + ` WHERE 1 = 1`
	var args []any
	pos := 1
	if filter.State != nil {
		query += fmt.Sprintf(" AND o.state = $%d", pos)
		args = append(args, string(*filter.State))
		pos++
	}
	if filter.SupplierID != nil {
		query += fmt.Sprintf(" AND o.supplier_id = $%d", pos)
		args = append(args, *filter.SupplierID)
	}
	query += ` ORDER BY o.id DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderView
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
