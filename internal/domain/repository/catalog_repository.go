package repository

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// CatalogRepository consultas de solo lectura al catálogo (proveedores, empleados, productos).
// Cada método devuelve (nil, nil) si el registro no existe.
type CatalogRepository interface {
	GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error)
	GetEmployee(ctx context.Context, id int64) (*entity.Employee, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
}
