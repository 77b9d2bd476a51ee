package procurement

import (
	"context"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// WorkflowUseCase atajo de gerencia: adjudicar y emitir la orden en una sola transacción.
type WorkflowUseCase struct {
	txRunner TxRunner
	policy   Policy
	events   eventSink
	log      *logger.Logger
}

func NewWorkflowUseCase(txRunner TxRunner, events EventPublisher, policy Policy, log *logger.Logger) *WorkflowUseCase {
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("workflow")
	return &WorkflowUseCase{
		txRunner: txRunner,
		policy:   policy,
		events:   eventSink{pub: events, log: l},
		log:      l,
	}
}

// AwardAndIssue adjudica la cotización y emite su orden. Si cualquiera de los dos pasos falla no queda nada escrito.
func (uc *WorkflowUseCase) AwardAndIssue(ctx context.Context, quotationID, awarderID int64, in dto.AwardRequest) (*dto.AwardAndIssueResponse, error) {
	reason := uc.policy.rejectionReason(in.RejectionReason)

	var (
		award *awardOutcome
		order *entity.PurchaseOrder
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		a, err := awardInTx(ctx, repos, quotationID, awarderID, reason, uc.policy.MarkRequestSelected)
		if err != nil {
			return err
		}
		o, err := createOrderInTx(ctx, repos, quotationID)
		if err != nil {
			return err
		}
		award, order = a, o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("quotation_id", quotationID).
		Int64("request_id", award.requestID).
		Int64("order_id", order.ID).
		Msg("cotización adjudicada y orden emitida")
	uc.events.emit(ctx, entity.EventQuotationAwarded, quotationID, awarderID, map[string]any{
		"request_id": award.requestID,
		"rejected":   award.rejected,
	})
	uc.events.emit(ctx, entity.EventOrderIssued, order.ID, awarderID, map[string]any{
		"quotation_id": quotationID,
		"total":        order.Total.StringFixed(2),
	})

	return &dto.AwardAndIssueResponse{
		RequestID:     award.requestID,
		QuotationID:   quotationID,
		RejectedCount: award.rejected,
		OrderID:       order.ID,
	}, nil
}
