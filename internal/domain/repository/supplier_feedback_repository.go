package repository

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// SupplierFeedbackRepository notificaciones a proveedores.
type SupplierFeedbackRepository interface {
	Create(ctx context.Context, fb *entity.SupplierFeedback) error
	GetByID(ctx context.Context, id int64) (*entity.SupplierFeedback, error)
	List(ctx context.Context, orderID *int64) ([]*entity.SupplierFeedback, error)
}
