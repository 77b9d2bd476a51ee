package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// QuotationRepository puerto de persistencia de cotizaciones.
type QuotationRepository interface {
	// Create inserta la cotización; devuelve ConflictError si ya existe una para (solicitud, proveedor).
	Create(ctx context.Context, q *entity.Quotation) error
	GetByID(ctx context.Context, id int64) (*entity.Quotation, error)
	ExistsForPair(ctx context.Context, requestID, supplierID int64) (bool, error)
	// LockByRequest bloquea (FOR UPDATE) todas las cotizaciones de la solicitud, ordenadas por id.
	LockByRequest(ctx context.Context, requestID int64) ([]*entity.Quotation, error)
	MarkAwarded(ctx context.Context, id, awarderID int64, at time.Time) error
	// RejectSiblings rechaza las demás cotizaciones de la solicitud que no estén ya Rechazada.
	RejectSiblings(ctx context.Context, requestID, winnerID int64, reason string) (int64, error)
	// GetView devuelve la cotización enriquecida; (nil, nil) si no existe.
	GetView(ctx context.Context, id int64) (*entity.QuotationView, error)
	List(ctx context.Context, filter entity.QuotationFilter) ([]*entity.QuotationView, error)
	ListPendingAward(ctx context.Context) ([]*entity.QuotationView, error)
}
