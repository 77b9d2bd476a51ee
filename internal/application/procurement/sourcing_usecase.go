package procurement

import (
	"context"
	"time"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// SuppliersPerRequest número exacto de proveedores a los que se envía cada solicitud.
const SuppliersPerRequest = 3

// SourcingUseCase envío a proveedores y registro/consulta de cotizaciones.
type SourcingUseCase struct {
	txRunner TxRunner
	repos    repository.Repositories
	catalog  repository.CatalogRepository
	events   eventSink
	log      *logger.Logger
}

// NewSourcingUseCase construye el caso de uso. repos debe estar atado al pool.
func NewSourcingUseCase(
	txRunner TxRunner,
	repos repository.Repositories,
	catalog repository.CatalogRepository,
	events EventPublisher,
	log *logger.Logger,
) *SourcingUseCase {
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("sourcing")
	return &SourcingUseCase{
		txRunner: txRunner,
		repos:    repos,
		catalog:  catalog,
		events:   eventSink{pub: events, log: l},
		log:      l,
	}
}

// SendToSuppliers vincula la solicitud Aprobada con exactamente tres proveedores distintos y la pasa a
// EnviadaAProveedores. Vínculos y cambio de estado van en una sola transacción.
func (uc *SourcingUseCase) SendToSuppliers(ctx context.Context, requestID, actorID int64, in dto.SendToSuppliersRequest) (*dto.SendToSuppliersResponse, error) {
	if err := validateSupplierIDs(in.SupplierIDs); err != nil {
		return nil, err
	}
	for _, id := range in.SupplierIDs {
		s, err := uc.catalog.GetSupplier(ctx, id)
		if err != nil {
			return nil, domain.Storage(err)
		}
		if s == nil {
			return nil, domain.NotFound("proveedor %d no existe", id)
		}
	}

	created := 0
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		pr, err := repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if pr == nil {
			return domain.NotFound("solicitud %d no existe", requestID)
		}
		if pr.State != entity.RequestAprobada {
			return domain.InvalidState("solo una solicitud Aprobada puede enviarse a proveedores (estado actual: %s)", pr.State)
		}
		now := time.Now().UTC()
		for _, id := range in.SupplierIDs {
			ok, err := repos.Links.Ensure(ctx, requestID, id, now)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return repos.Requests.UpdateState(ctx, requestID, entity.RequestEnviadaAProveedores)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("request_id", requestID).Ints64("supplier_ids", in.SupplierIDs).Msg("solicitud enviada a proveedores")
	uc.events.emit(ctx, entity.EventRequestSent, requestID, actorID, map[string]any{"supplier_ids": in.SupplierIDs})

	return &dto.SendToSuppliersResponse{
		RequestID:    requestID,
		State:        string(entity.RequestEnviadaAProveedores),
		SupplierIDs:  in.SupplierIDs,
		LinksCreated: created,
	}, nil
}

func validateSupplierIDs(ids []int64) error {
	if len(ids) != SuppliersPerRequest {
		return domain.Validation("se requieren exactamente %d proveedores distintos (recibidos %d)", SuppliersPerRequest, len(ids))
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return domain.Validation("id de proveedor inválido: %d", id)
		}
		if _, dup := seen[id]; dup {
			return domain.Validation("proveedor repetido: %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// RegisterQuotation registra la oferta de un proveedor al que se le envió la solicitud. Una por par.
func (uc *SourcingUseCase) RegisterQuotation(ctx context.Context, in dto.RegisterQuotationRequest) (*dto.QuotationResponse, error) {
	requestID := in.RequestID
	if requestID <= 0 {
		return nil, domain.Validation("request_id es obligatorio")
	}
	if in.SupplierID <= 0 {
		return nil, domain.Validation("supplier_id es obligatorio")
	}
	if in.Price == nil {
		return nil, domain.Validation("el precio es obligatorio")
	}
	if in.Price.IsNegative() {
		return nil, domain.Validation("el precio no puede ser negativo")
	}

	pr, err := uc.repos.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if pr == nil {
		return nil, domain.NotFound("solicitud %d no existe", requestID)
	}
	linked, err := uc.repos.Links.Exists(ctx, requestID, in.SupplierID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if !linked {
		return nil, domain.Conflict(domain.MsgNotSentToSupplier)
	}
	quoted, err := uc.repos.Quotations.ExistsForPair(ctx, requestID, in.SupplierID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if quoted {
		return nil, domain.Conflict(domain.MsgAlreadyQuoted)
	}

	q := &entity.Quotation{
		RequestID:    requestID,
		SupplierID:   in.SupplierID,
		Price:        in.Price.Round(2),
		DeliveryTime: trimmed(in.DeliveryTime),
		Terms:        trimmed(in.Terms),
		State:        entity.QuotationRecibida,
	}
	// La constraint única cubre a dos registros concurrentes del mismo par.
	if err := uc.repos.Quotations.Create(ctx, q); err != nil {
		return nil, domain.Storage(err)
	}
	uc.log.Info().
		Int64("quotation_id", q.ID).
		Int64("request_id", requestID).
		Int64("supplier_id", in.SupplierID).
		Str("price", q.Price.StringFixed(2)).
		Msg("cotización registrada")
	return toQuotationResponse(q), nil
}

// GetQuotation cotización enriquecida con proveedor, producto y solicitante.
func (uc *SourcingUseCase) GetQuotation(ctx context.Context, id int64) (*dto.QuotationResponse, error) {
	v, err := uc.repos.Quotations.GetView(ctx, id)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if v == nil {
		return nil, domain.NotFound("cotización %d no existe", id)
	}
	out := toQuotationViewResponse(v)
	return &out, nil
}

// ListQuotations lista cotizaciones enriquecidas con filtros opcionales.
func (uc *SourcingUseCase) ListQuotations(ctx context.Context, q dto.QuotationListQuery) ([]dto.QuotationResponse, error) {
	filter := entity.QuotationFilter{RequestID: q.RequestID, SupplierID: q.SupplierID}
	if q.State != "" {
		st, err := entity.ParseQuotationState(q.State)
		if err != nil {
			return nil, domain.Validation("%v", err)
		}
		filter.State = &st
	}
	list, err := uc.repos.Quotations.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return toQuotationList(list), nil
}

// ListPendingForAward cotizaciones Recibida de solicitudes todavía sin ganador.
// Orden: solicitud descendente, luego precio ascendente.
func (uc *SourcingUseCase) ListPendingForAward(ctx context.Context) ([]dto.QuotationResponse, error) {
	list, err := uc.repos.Quotations.ListPendingAward(ctx)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return toQuotationList(list), nil
}

func toQuotationList(list []*entity.QuotationView) []dto.QuotationResponse {
	out := make([]dto.QuotationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toQuotationViewResponse(v))
	}
	return out
}
