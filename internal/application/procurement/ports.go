package procurement

import (
	"context"
	"strings"

	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Cualquier error devuelto por fn provoca Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// InventoryPoster registra la entrada por compra dentro de la transacción de la aceptación.
// Lo implementa inventory.PostReceiptUseCase.
type InventoryPoster interface {
	PostReceiptInTx(ctx context.Context, repos repository.Repositories, in inventory.ReceiptInput) (*inventory.Posting, error)
}

var _ InventoryPoster = (*inventory.PostReceiptUseCase)(nil)

// EventPublisher publica eventos del flujo una vez confirmada la transacción.
type EventPublisher interface {
	Publish(ctx context.Context, ev entity.WorkflowEvent) error
}

// Policy decisiones configurables del flujo.
type Policy struct {
	AllowRedecision        bool
	DefaultRejectionReason string
	MarkRequestSelected    bool
}

// DefaultPolicy comportamiento permisivo histórico.
func DefaultPolicy() Policy {
	return Policy{
		AllowRedecision:        true,
		DefaultRejectionReason: entity.DefaultRejectionReason,
		MarkRequestSelected:    true,
	}
}

func (p Policy) rejectionReason(provided *string) string {
	if provided != nil {
		if s := strings.TrimSpace(*provided); s != "" {
			return s
		}
	}
	if p.DefaultRejectionReason == "" {
		return entity.DefaultRejectionReason
	}
	return p.DefaultRejectionReason
}
