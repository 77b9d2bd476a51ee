package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lecturas del catálogo (proveedores, empleados, productos).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador sobre el pool.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `SELECT id, name, email, phone FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Phone)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *CatalogRepo) GetEmployee(ctx context.Context, id int64) (*entity.Employee, error) {
	var e entity.Employee
	err := r.q.QueryRow(ctx, `SELECT id, name, role FROM employees WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Role)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT id, name, category FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Category)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
