package repository

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia de órdenes de compra.
type PurchaseOrderRepository interface {
	// Create inserta la orden; devuelve ConflictError si ya existe una para la cotización.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	GetByQuotation(ctx context.Context, quotationID int64) (*entity.PurchaseOrder, error)
	GetOrigin(ctx context.Context, id int64) (*entity.OrderOrigin, error)
	MarkDelivered(ctx context.Context, id int64) error
	SetSupervisorConformity(ctx context.Context, id, supervisorID int64, c entity.Conformity, comment *string) error
	SetEmployeeAcceptance(ctx context.Context, id, employeeID int64, c entity.Conformity, comment *string) error
	GetView(ctx context.Context, id int64) (*entity.OrderView, error)
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.OrderView, error)
}

// DispatchEventRepository historial append-only de despacho.
type DispatchEventRepository interface {
	Append(ctx context.Context, ev *entity.DispatchEvent) error
	ListByOrder(ctx context.Context, orderID int64) ([]entity.DispatchEvent, error)
}
