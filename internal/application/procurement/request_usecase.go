package procurement

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// RequestUseCase ciclo de vida de la solicitud de compra: creación, revisión y decisión del jefe.
type RequestUseCase struct {
	txRunner TxRunner
	requests repository.PurchaseRequestRepository
	links    repository.SupplierLinkRepository
	catalog  repository.CatalogRepository
	policy   Policy
	log      *logger.Logger
}

// NewRequestUseCase construye el caso de uso. requests y links deben estar atados al pool.
func NewRequestUseCase(
	txRunner TxRunner,
	requests repository.PurchaseRequestRepository,
	links repository.SupplierLinkRepository,
	catalog repository.CatalogRepository,
	policy Policy,
	log *logger.Logger,
) *RequestUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RequestUseCase{
		txRunner: txRunner,
		requests: requests,
		links:    links,
		catalog:  catalog,
		policy:   policy,
		log:      log.Component("request"),
	}
}

// Create registra una solicitud en estado Creada.
func (uc *RequestUseCase) Create(ctx context.Context, requesterID int64, in dto.CreatePurchaseRequest) (*dto.PurchaseRequestResponse, error) {
	if in.Quantity <= 0 {
		return nil, domain.Validation("la cantidad debe ser un entero positivo")
	}
	if requesterID <= 0 || in.ProductID <= 0 {
		return nil, domain.Validation("solicitante y producto son obligatorios")
	}

	requester, err := uc.catalog.GetEmployee(ctx, requesterID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if requester == nil {
		return nil, domain.NotFound("empleado %d no existe", requesterID)
	}
	product, err := uc.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if product == nil {
		return nil, domain.NotFound("producto %d no existe", in.ProductID)
	}

	pr := &entity.PurchaseRequest{
		RequesterID: requesterID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Reason:      trimmed(in.Reason),
		State:       entity.RequestCreada,
	}
	if err := uc.requests.Create(ctx, pr); err != nil {
		return nil, domain.Storage(err)
	}
	uc.log.Info().Int64("request_id", pr.ID).Int64("requester_id", requesterID).Msg("solicitud creada")

	return toRequestResponse(&entity.RequestView{
		PurchaseRequest: *pr,
		RequesterName:   requester.Name,
		ProductName:     product.Name,
	}), nil
}

// Revise actualiza cantidad y/o motivo mientras la solicitud siga editable. Creada pasa a Revisada.
// La escritura es condicional sobre el estado leído: si otro actor lo cambió entre medio, ConflictError.
func (uc *RequestUseCase) Revise(ctx context.Context, requestID int64, in dto.RevisePurchaseRequest) (*dto.PurchaseRequestResponse, error) {
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, domain.Validation("la cantidad debe ser un entero positivo")
	}
	pr, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if pr == nil {
		return nil, domain.NotFound("solicitud %d no existe", requestID)
	}
	if !pr.State.Editable() {
		return nil, domain.InvalidState("la solicitud en estado %s no admite cambios", pr.State)
	}

	prev := pr.State
	if in.Quantity != nil {
		pr.Quantity = *in.Quantity
	}
	if in.Reason != nil {
		pr.Reason = trimmed(in.Reason)
	}
	if prev == entity.RequestCreada {
		pr.State = entity.RequestRevisada
	}

	ok, err := uc.requests.Revise(ctx, pr, prev)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if !ok {
		return nil, domain.Conflict(domain.MsgConcurrentUpdate)
	}
	uc.log.Info().Int64("request_id", requestID).Str("state", string(pr.State)).Msg("solicitud revisada")
	return uc.Get(ctx, requestID)
}

// Approve marca la solicitud como Aprobada.
func (uc *RequestUseCase) Approve(ctx context.Context, requestID, supervisorID int64, in dto.DecisionRequest) (*dto.PurchaseRequestResponse, error) {
	return uc.decide(ctx, requestID, supervisorID, entity.RequestAprobada, in.Comment)
}

// Reject marca la solicitud como Rechazada.
func (uc *RequestUseCase) Reject(ctx context.Context, requestID, supervisorID int64, in dto.DecisionRequest) (*dto.PurchaseRequestResponse, error) {
	return uc.decide(ctx, requestID, supervisorID, entity.RequestRechazada, in.Comment)
}

// decide sin precondición de estado salvo que la política prohíba redecidir.
func (uc *RequestUseCase) decide(ctx context.Context, requestID, supervisorID int64, state entity.RequestState, comment *string) (*dto.PurchaseRequestResponse, error) {
	if supervisorID <= 0 {
		return nil, domain.Validation("supervisor inválido")
	}
	var previous entity.RequestState
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		pr, err := repos.Requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if pr == nil {
			return domain.NotFound("solicitud %d no existe", requestID)
		}
		if !uc.policy.AllowRedecision && pr.State.Decided() {
			return domain.InvalidState("la solicitud ya fue decidida (%s)", pr.State)
		}
		previous = pr.State
		ok, err := repos.Requests.SetDecision(ctx, requestID, state, supervisorID, trimmed(comment), time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("solicitud %d no existe", requestID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("request_id", requestID).
		Int64("supervisor_id", supervisorID).
		Str("from", string(previous)).
		Str("to", string(state)).
		Msg("decisión registrada")
	return uc.Get(ctx, requestID)
}

// Get devuelve la solicitud enriquecida junto con los proveedores a los que se envió.
func (uc *RequestUseCase) Get(ctx context.Context, requestID int64) (*dto.PurchaseRequestResponse, error) {
	v, err := uc.requests.GetView(ctx, requestID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if v == nil {
		return nil, domain.NotFound("solicitud %d no existe", requestID)
	}
	links, err := uc.links.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := toRequestResponse(v)
	for _, l := range links {
		s := dto.InvitedSupplierResponse{SupplierID: l.SupplierID, SentAt: l.SentAt}
		if sup, err := uc.catalog.GetSupplier(ctx, l.SupplierID); err == nil && sup != nil {
			s.SupplierName = sup.Name
		}
		out.Suppliers = append(out.Suppliers, s)
	}
	return out, nil
}

// List lista solicitudes con filtros opcionales de estado y solicitante.
func (uc *RequestUseCase) List(ctx context.Context, q dto.RequestListQuery) ([]dto.PurchaseRequestResponse, error) {
	var filter entity.RequestFilter
	if q.State != "" {
		st, err := entity.ParseRequestState(q.State)
		if err != nil {
			return nil, domain.Validation("%v", err)
		}
		filter.State = &st
	}
	filter.RequesterID = q.RequesterID

	list, err := uc.requests.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := make([]dto.PurchaseRequestResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *toRequestResponse(v))
	}
	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
