package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// PurchaseRequestRepository puerto de persistencia de solicitudes de compra.
// GetByID/GetForUpdate devuelven (nil, nil) si no existe.
type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *entity.PurchaseRequest) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene efecto dentro de una transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseRequest, error)
	// Revise actualiza cantidad/motivo/estado solo si el estado sigue siendo expected. Devuelve false si no aplicó.
	Revise(ctx context.Context, req *entity.PurchaseRequest, expected entity.RequestState) (bool, error)
	// SetDecision registra la decisión del jefe. Devuelve false si la solicitud no existe.
	SetDecision(ctx context.Context, id int64, state entity.RequestState, reviewerID int64, comment *string, at time.Time) (bool, error)
	UpdateState(ctx context.Context, id int64, state entity.RequestState) error
	// HasOpenForProduct indica si el producto ya tiene una solicitud no rechazada cuya compra
	// todavía no ingresó a inventario.
	HasOpenForProduct(ctx context.Context, productID int64) (bool, error)
	GetView(ctx context.Context, id int64) (*entity.RequestView, error)
	List(ctx context.Context, filter entity.RequestFilter) ([]*entity.RequestView, error)
}
