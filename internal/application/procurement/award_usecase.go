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

// AwardUseCase selección de la cotización ganadora con rechazo automático del resto.
type AwardUseCase struct {
	txRunner TxRunner
	policy   Policy
	events   eventSink
	log      *logger.Logger
}

// NewAwardUseCase construye el caso de uso.
func NewAwardUseCase(txRunner TxRunner, events EventPublisher, policy Policy, log *logger.Logger) *AwardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("award")
	return &AwardUseCase{
		txRunner: txRunner,
		policy:   policy,
		events:   eventSink{pub: events, log: l},
		log:      l,
	}
}

type awardOutcome struct {
	requestID int64
	quotation *entity.Quotation
	rejected  int64
}

// AwardQuotation adjudica la cotización. Dos adjudicaciones concurrentes sobre la misma solicitud
// se serializan con el bloqueo de la fila de la solicitud; la segunda recibe ConflictError.
func (uc *AwardUseCase) AwardQuotation(ctx context.Context, quotationID, awarderID int64, in dto.AwardRequest) (*dto.AwardResponse, error) {
	reason := uc.policy.rejectionReason(in.RejectionReason)

	var out *awardOutcome
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := awardInTx(ctx, repos, quotationID, awarderID, reason, uc.policy.MarkRequestSelected)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("quotation_id", quotationID).
		Int64("request_id", out.requestID).
		Int64("rejected", out.rejected).
		Int64("awarder_id", awarderID).
		Msg("cotización adjudicada")
	uc.events.emit(ctx, entity.EventQuotationAwarded, quotationID, awarderID, map[string]any{
		"request_id":  out.requestID,
		"supplier_id": out.quotation.SupplierID,
		"price":       out.quotation.Price.StringFixed(2),
		"rejected":    out.rejected,
	})

	return &dto.AwardResponse{
		RequestID:     out.requestID,
		QuotationID:   quotationID,
		RejectedCount: out.rejected,
	}, nil
}

// awardInTx bloquea la solicitud y luego sus cotizaciones (siempre en ese orden), verifica que no haya
// ganador y aplica: ganadora Aprobada, hermanas no rechazadas a Rechazada, solicitud Seleccionada.
func awardInTx(ctx context.Context, repos repository.Repositories, quotationID, awarderID int64, reason string, markSelected bool) (*awardOutcome, error) {
	if awarderID <= 0 {
		return nil, domain.Validation("actor inválido")
	}
	q, err := repos.Quotations.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.NotFound("cotización %d no existe", quotationID)
	}
	pr, err := repos.Requests.GetForUpdate(ctx, q.RequestID)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, domain.NotFound("solicitud %d no existe", q.RequestID)
	}

	siblings, err := repos.Quotations.LockByRequest(ctx, q.RequestID)
	if err != nil {
		return nil, err
	}
	var target *entity.Quotation
	for _, s := range siblings {
		if s.ID == quotationID {
			target = s
			continue
		}
		if s.State == entity.QuotationAprobada {
			return nil, domain.Conflict(domain.MsgSiblingAwarded)
		}
	}
	if target == nil {
		return nil, domain.NotFound("cotización %d no existe", quotationID)
	}
	if target.State == entity.QuotationAprobada {
		return nil, domain.Conflict(domain.MsgAlreadyAwarded)
	}

	if err := repos.Quotations.MarkAwarded(ctx, quotationID, awarderID, time.Now().UTC()); err != nil {
		return nil, err
	}
	rejected, err := repos.Quotations.RejectSiblings(ctx, q.RequestID, quotationID, reason)
	if err != nil {
		return nil, err
	}
	if markSelected {
		if err := repos.Requests.UpdateState(ctx, q.RequestID, entity.RequestSeleccionada); err != nil {
			return nil, err
		}
	}
	target.State = entity.QuotationAprobada
	return &awardOutcome{requestID: q.RequestID, quotation: target, rejected: rejected}, nil
}
