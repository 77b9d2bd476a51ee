package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

// Ensure TxRunner implements procurement.TxRunner and inventory.TxRunner.
var _ procurement.TxRunner = (*TxRunner)(nil)
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Cualquier error no tipado (pgx, red, contexto cancelado) sale como StorageError.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Storage(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return domain.Storage(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Storage(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// NewRepositories arma el juego de repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Requests:   NewPurchaseRequestRepository(q),
		Links:      NewSupplierLinkRepository(q),
		Quotations: NewQuotationRepository(q),
		Orders:     NewPurchaseOrderRepository(q),
		Dispatch:   NewDispatchEventRepository(q),
		Inventory:  NewInventoryRepository(q),
		Movements:  NewInventoryMovementRepository(q),
		Receipts:   NewReceiptRepository(q),
		Feedback:   NewSupplierFeedbackRepository(q),
	}
}
