package inventory

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre la existencia y el movimiento cuando la entrada se registra de forma aislada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}
