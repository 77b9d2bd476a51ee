package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// ReceiptInput entrada por compra a registrar.
type ReceiptInput struct {
	ProductID int64
	Quantity  int
	Reference string // p. ej. "OC:12;RCV:7"
	OrderID   *int64
}

// Posting resultado de una entrada: la existencia resultante y el movimiento creado.
type Posting struct {
	Record   *entity.InventoryRecord
	Movement *entity.InventoryMovement
}

// PostReceiptUseCase registra entradas por compra: incremento de existencia + movimiento append-only.
type PostReceiptUseCase struct {
	txRunner  TxRunner
	inventory repository.InventoryRepository
	movements repository.InventoryMovementRepository
	log       *logger.Logger
}

// NewPostReceiptUseCase construye el caso de uso. inventory y movements se usan para las lecturas.
func NewPostReceiptUseCase(
	txRunner TxRunner,
	inventory repository.InventoryRepository,
	movements repository.InventoryMovementRepository,
	log *logger.Logger,
) *PostReceiptUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PostReceiptUseCase{
		txRunner:  txRunner,
		inventory: inventory,
		movements: movements,
		log:       log.Component("inventory"),
	}
}

// PostReceiptInTx registra la entrada usando los repositorios de la transacción del llamador.
// El incremento es un único upsert; no se lee la existencia antes de escribirla.
func (uc *PostReceiptUseCase) PostReceiptInTx(ctx context.Context, repos repository.Repositories, in ReceiptInput) (*Posting, error) {
	if in.Quantity <= 0 {
		return nil, domain.Validation("la cantidad a ingresar debe ser mayor que cero")
	}
	if in.ProductID <= 0 {
		return nil, domain.Validation("product_id inválido")
	}

	rec, err := repos.Inventory.Increment(ctx, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		TransactionID: uuid.New().String(),
		ProductID:     in.ProductID,
		Kind:          entity.MovementKindPurchaseEntry,
		Quantity:      in.Quantity,
		OccurredAt:    time.Now().UTC(),
		Reference:     in.Reference,
		OrderID:       in.OrderID,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Int("quantity_on_hand", rec.QuantityOnHand).
		Str("reference", in.Reference).
		Msg("entrada por compra registrada")
	return &Posting{Record: rec, Movement: mov}, nil
}

// PostReceipt registra la entrada en su propia transacción.
func (uc *PostReceiptUseCase) PostReceipt(ctx context.Context, in ReceiptInput) (*Posting, error) {
	var out *Posting
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		p, err := uc.PostReceiptInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInventory existencias de todos los productos con entradas.
func (uc *PostReceiptUseCase) ListInventory(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	list, err := uc.inventory.List(ctx)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := make([]dto.InventoryItemResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toItemResponse(r))
	}
	return out, nil
}

// GetInventory existencia de un producto; NotFound si nunca tuvo entradas.
func (uc *PostReceiptUseCase) GetInventory(ctx context.Context, productID int64) (*dto.InventoryItemResponse, error) {
	rec, err := uc.inventory.Get(ctx, productID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if rec == nil {
		return nil, domain.NotFound("el producto %d no tiene existencias registradas", productID)
	}
	item := toItemResponse(rec)
	return &item, nil
}

// ListMovements movimientos de un producto, paginados.
func (uc *PostReceiptUseCase) ListMovements(ctx context.Context, productID int64, page dto.PageRequest) (*dto.MovementListResponse, error) {
	if productID <= 0 {
		return nil, domain.Validation("product_id inválido")
	}
	page.DefaultPage()
	list, err := uc.movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Storage(err)
	}
	items := make([]dto.InventoryMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.InventoryMovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			ProductID:     m.ProductID,
			Kind:          m.Kind,
			Quantity:      m.Quantity,
			OccurredAt:    m.OccurredAt,
			Reference:     m.Reference,
			OrderID:       m.OrderID,
		})
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toItemResponse(r *entity.InventoryRecord) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ProductID:      r.ProductID,
		ProductName:    r.ProductName,
		QuantityOnHand: r.QuantityOnHand,
		MinQuantity:    r.MinQuantity,
		BelowMinimum:   r.BelowMinimum(),
		UpdatedAt:      r.UpdatedAt,
	}
}
