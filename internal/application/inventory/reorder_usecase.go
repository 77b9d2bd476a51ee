package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// ReorderUseCase mínimos de existencia y revisión de reorden.
// La revisión abre una solicitud Creada por cada producto en o bajo su mínimo que no tenga ya una abierta.
type ReorderUseCase struct {
	txRunner  TxRunner
	inventory repository.InventoryRepository
	catalog   repository.CatalogRepository
	log       *logger.Logger
}

func NewReorderUseCase(
	txRunner TxRunner,
	inventory repository.InventoryRepository,
	catalog repository.CatalogRepository,
	log *logger.Logger,
) *ReorderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReorderUseCase{
		txRunner:  txRunner,
		inventory: inventory,
		catalog:   catalog,
		log:       log.Component("reorder"),
	}
}

// SetMinimum fija el mínimo de un producto. Si aún no tenía existencias, queda con existencia 0.
func (uc *ReorderUseCase) SetMinimum(ctx context.Context, productID int64, in dto.SetMinimumRequest) (*dto.InventoryItemResponse, error) {
	if productID <= 0 {
		return nil, domain.Validation("product_id inválido")
	}
	if in.MinQuantity == nil {
		return nil, domain.Validation("min_quantity es obligatorio")
	}
	if *in.MinQuantity < 0 {
		return nil, domain.Validation("min_quantity no puede ser negativo")
	}
	rec, err := uc.inventory.SetMinimum(ctx, productID, *in.MinQuantity)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if rec == nil {
		return nil, domain.NotFound("producto %d no existe", productID)
	}
	uc.log.Info().Int64("product_id", productID).Int("min_quantity", *in.MinQuantity).Msg("mínimo actualizado")
	item := toItemResponse(rec)
	return &item, nil
}

// Review recorre los productos bajo mínimo. Cada producto se decide en su propia transacción,
// con la fila de existencias bloqueada, así dos revisiones simultáneas no duplican la solicitud.
func (uc *ReorderUseCase) Review(ctx context.Context, actorID int64) (*dto.ReorderReviewResponse, error) {
	actor, err := uc.catalog.GetEmployee(ctx, actorID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if actor == nil {
		return nil, domain.NotFound("empleado %d no existe", actorID)
	}

	candidates, err := uc.inventory.ListBelowMinimum(ctx)
	if err != nil {
		return nil, domain.Storage(err)
	}

	out := &dto.ReorderReviewResponse{Items: make([]dto.ReorderItemResponse, 0, len(candidates))}
	for _, c := range candidates {
		var item *dto.ReorderItemResponse
		err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
			it, err := uc.reviewProduct(ctx, repos, actorID, c.ProductID)
			item = it
			return err
		})
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if item.Status == dto.ReorderCreated {
			out.Created++
		}
		out.Items = append(out.Items, *item)
	}

	uc.log.Info().
		Int64("actor_id", actorID).
		Int("below_minimum", len(candidates)).
		Int("created", out.Created).
		Msg("revisión de reorden")
	return out, nil
}

// reviewProduct nil si el producto ya no está bajo mínimo al bloquear la fila.
func (uc *ReorderUseCase) reviewProduct(ctx context.Context, repos repository.Repositories, actorID, productID int64) (*dto.ReorderItemResponse, error) {
	rec, err := repos.Inventory.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if rec == nil || !rec.BelowMinimum() {
		return nil, nil
	}
	item := &dto.ReorderItemResponse{
		ProductID:         rec.ProductID,
		ProductName:       rec.ProductName,
		QuantityOnHand:    rec.QuantityOnHand,
		MinQuantity:       *rec.MinQuantity,
		SuggestedQuantity: rec.SuggestedReorder(),
		Status:            dto.ReorderPending,
	}

	open, err := repos.Requests.HasOpenForProduct(ctx, productID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if open {
		return item, nil
	}

	reason := fmt.Sprintf("Reposición: existencia %d, mínimo %d", rec.QuantityOnHand, *rec.MinQuantity)
	pr := &entity.PurchaseRequest{
		RequesterID: actorID,
		ProductID:   productID,
		Quantity:    item.SuggestedQuantity,
		Reason:      &reason,
		State:       entity.RequestCreada,
	}
	if err := repos.Requests.Create(ctx, pr); err != nil {
		return nil, domain.Storage(err)
	}
	item.RequestID = &pr.ID
	item.Status = dto.ReorderCreated
	uc.log.Info().
		Int64("request_id", pr.ID).
		Int64("product_id", productID).
		Int("quantity", pr.Quantity).
		Msg("solicitud de reposición creada")
	return item, nil
}
