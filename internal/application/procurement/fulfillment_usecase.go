package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// FulfillmentUseCase orden de compra: emisión, despacho, conformidad, aceptación y notificación al proveedor.
type FulfillmentUseCase struct {
	txRunner TxRunner
	repos    repository.Repositories
	catalog  repository.CatalogRepository
	poster   InventoryPoster
	events   eventSink
	log      *logger.Logger
}

// NewFulfillmentUseCase construye el caso de uso. repos debe estar atado al pool.
func NewFulfillmentUseCase(
	txRunner TxRunner,
	repos repository.Repositories,
	catalog repository.CatalogRepository,
	poster InventoryPoster,
	events EventPublisher,
	log *logger.Logger,
) *FulfillmentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("fulfillment")
	return &FulfillmentUseCase{
		txRunner: txRunner,
		repos:    repos,
		catalog:  catalog,
		poster:   poster,
		events:   eventSink{pub: events, log: l},
		log:      l,
	}
}

// OrderExistsError conflicto de orden duplicada; lleva el id existente para que el llamador se recupere.
type OrderExistsError struct {
	OrderID int64
}

func (e *OrderExistsError) Error() string {
	return fmt.Sprintf("%s (orden %d)", domain.MsgOrderExists, e.OrderID)
}

// Is permite errors.Is(err, domain.ErrConflict).
func (e *OrderExistsError) Is(target error) bool { return target == domain.ErrConflict }

// createOrderInTx emite la orden (Emitida, total = precio) y su primer evento NoDespachado.
func createOrderInTx(ctx context.Context, repos repository.Repositories, quotationID int64) (*entity.PurchaseOrder, error) {
	q, err := repos.Quotations.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.NotFound("cotización %d no existe", quotationID)
	}
	if q.State != entity.QuotationAprobada {
		return nil, domain.InvalidState("la cotización está %s; solo una cotización Aprobada genera orden", q.State)
	}
	existing, err := repos.Orders.GetByQuotation(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &OrderExistsError{OrderID: existing.ID}
	}

	order := &entity.PurchaseOrder{
		QuotationID: quotationID,
		SupplierID:  q.SupplierID,
		Total:       q.Price,
		State:       entity.OrderEmitida,
	}
	if err := repos.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if err := repos.Dispatch.Append(ctx, &entity.DispatchEvent{
		OrderID: order.ID,
		Status:  entity.DispatchNoDespachado,
	}); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateFromQuotation emite la orden para una cotización Aprobada. Si ya existe, devuelve su id
// junto con un OrderExistsError.
func (uc *FulfillmentUseCase) CreateFromQuotation(ctx context.Context, quotationID, actorID int64) (*dto.OrderCreatedResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := createOrderInTx(ctx, repos, quotationID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		var exists *OrderExistsError
		if errors.As(err, &exists) {
			return &dto.OrderCreatedResponse{OrderID: exists.OrderID, Existing: true}, err
		}
		// Carrera: otra transacción insertó la orden entre la verificación y el insert.
		if errors.Is(err, domain.ErrConflict) {
			if o, rerr := uc.repos.Orders.GetByQuotation(ctx, quotationID); rerr == nil && o != nil {
				exists = &OrderExistsError{OrderID: o.ID}
				return &dto.OrderCreatedResponse{OrderID: o.ID, Existing: true}, exists
			}
		}
		return nil, err
	}

	uc.log.Info().Int64("order_id", order.ID).Int64("quotation_id", quotationID).Msg("orden emitida")
	uc.events.emit(ctx, entity.EventOrderIssued, order.ID, actorID, map[string]any{
		"quotation_id": quotationID,
		"supplier_id":  order.SupplierID,
		"total":        order.Total.StringFixed(2),
	})
	return &dto.OrderCreatedResponse{OrderID: order.ID}, nil
}

// RecordDispatch agrega un evento al historial; Entregado además cambia el estado de la orden.
func (uc *FulfillmentUseCase) RecordDispatch(ctx context.Context, orderID, actorID int64, in dto.DispatchRequest) (*dto.DispatchEventResponse, error) {
	status, err := entity.ParseDispatchStatus(in.Status)
	if err != nil {
		return nil, domain.Validation("%v", err)
	}

	ev := &entity.DispatchEvent{OrderID: orderID, Status: status, Notes: trimmed(in.Notes)}
	delivered := false
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("orden %d no existe", orderID)
		}
		if err := repos.Dispatch.Append(ctx, ev); err != nil {
			return err
		}
		if status == entity.DispatchEntregado && o.State != entity.OrderEntregado {
			delivered = true
			return repos.Orders.MarkDelivered(ctx, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("order_id", orderID).Str("status", string(status)).Msg("despacho registrado")
	if delivered {
		uc.events.emit(ctx, entity.EventOrderDelivered, orderID, actorID, nil)
	}
	resp := toDispatchResponse(*ev)
	return &resp, nil
}

// RecordSupervisorConformity registra SI/NO del jefe sobre una orden ya Entregado.
func (uc *FulfillmentUseCase) RecordSupervisorConformity(ctx context.Context, orderID, supervisorID int64, in dto.ConformityRequest) (*dto.OrderResponse, error) {
	if in.Conforme == nil {
		return nil, domain.Validation("el campo conforme es obligatorio")
	}
	c := entity.ConformityFrom(*in.Conforme)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("orden %d no existe", orderID)
		}
		if o.State != entity.OrderEntregado {
			return domain.Conflict(domain.MsgNotDelivered)
		}
		return repos.Orders.SetSupervisorConformity(ctx, orderID, supervisorID, c, trimmed(in.Comment))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("order_id", orderID).Int64("supervisor_id", supervisorID).Str("conformity", string(c)).Msg("conformidad del jefe registrada")
	return uc.GetOrder(ctx, orderID)
}

// RecordEmployeeAcceptance registra la aceptación del empleado. Con conforme=true crea la recepción y
// registra la entrada a inventario en la misma transacción; una orden aceptada no se puede volver a aceptar.
func (uc *FulfillmentUseCase) RecordEmployeeAcceptance(ctx context.Context, orderID, employeeID int64, in dto.ConformityRequest) (*dto.AcceptanceResponse, error) {
	if in.Conforme == nil {
		return nil, domain.Validation("el campo conforme es obligatorio")
	}
	c := entity.ConformityFrom(*in.Conforme)
	comment := trimmed(in.Comment)

	resp := &dto.AcceptanceResponse{OrderID: orderID, Acceptance: string(c)}
	var posting *inventory.Posting
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("orden %d no existe", orderID)
		}
		if o.State != entity.OrderEntregado {
			return domain.Conflict(domain.MsgNotDelivered)
		}
		if o.SupervisorConformity != entity.ConformitySI {
			return domain.Conflict(domain.MsgSupervisorRequired)
		}
		if o.EmployeeAcceptance == entity.ConformitySI {
			return domain.Conflict(domain.MsgAlreadyAccepted)
		}
		if err := repos.Orders.SetEmployeeAcceptance(ctx, orderID, employeeID, c, comment); err != nil {
			return err
		}
		if c != entity.ConformitySI {
			return nil
		}

		origin, err := repos.Orders.GetOrigin(ctx, orderID)
		if err != nil {
			return err
		}
		if origin == nil {
			return domain.NotFound("no se encontró la solicitud de origen de la orden %d", orderID)
		}
		rc := &entity.Receipt{OrderID: orderID, ReceivedAt: time.Now().UTC(), Notes: comment}
		if err := repos.Receipts.Create(ctx, rc); err != nil {
			return err
		}
		if err := repos.Receipts.AddLine(ctx, &entity.ReceiptLine{
			ReceiptID: rc.ID,
			ProductID: origin.ProductID,
			Quantity:  origin.Quantity,
		}); err != nil {
			return err
		}
		p, err := uc.poster.PostReceiptInTx(ctx, repos, inventory.ReceiptInput{
			ProductID: origin.ProductID,
			Quantity:  origin.Quantity,
			Reference: fmt.Sprintf("OC:%d;RCV:%d", orderID, rc.ID),
			OrderID:   &orderID,
		})
		if err != nil {
			return err
		}
		posting = p
		resp.ReceiptID = &rc.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("order_id", orderID).Int64("employee_id", employeeID).Str("acceptance", string(c)).Msg("aceptación del empleado registrada")
	if posting != nil {
		qty := posting.Record.QuantityOnHand
		resp.QuantityOnHand = &qty
		uc.events.emit(ctx, entity.EventInventoryReceived, orderID, employeeID, map[string]any{
			"product_id":       posting.Movement.ProductID,
			"quantity":         posting.Movement.Quantity,
			"quantity_on_hand": qty,
			"reference":        posting.Movement.Reference,
		})
	}
	return resp, nil
}

// GetOrder cabecera enriquecida más el historial de despacho ordenado.
func (uc *FulfillmentUseCase) GetOrder(ctx context.Context, orderID int64) (*dto.OrderResponse, error) {
	v, err := uc.repos.Orders.GetView(ctx, orderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if v == nil {
		return nil, domain.NotFound("orden %d no existe", orderID)
	}
	v.Tracking, err = uc.repos.Dispatch.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	rc, err := uc.repos.Receipts.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := toOrderResponse(v)
	if rc != nil {
		out.ReceiptID = &rc.ID
	}
	return out, nil
}

// ListOrders lista órdenes (sin historial) con filtros opcionales.
func (uc *FulfillmentUseCase) ListOrders(ctx context.Context, q dto.OrderListQuery) ([]dto.OrderResponse, error) {
	filter := entity.OrderFilter{SupplierID: q.SupplierID}
	if q.State != "" {
		st, err := entity.ParseOrderState(q.State)
		if err != nil {
			return nil, domain.Validation("%v", err)
		}
		filter.State = &st
	}
	list, err := uc.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *toOrderResponse(v))
	}
	return out, nil
}

// RecordSupplierFeedback registra la calificación Bien/Mal del jefe al proveedor de una orden entregada.
func (uc *FulfillmentUseCase) RecordSupplierFeedback(ctx context.Context, supervisorID int64, in dto.SupplierFeedbackRequest) (*dto.SupplierFeedbackResponse, error) {
	result, err := entity.ParseFeedbackResult(in.Result)
	if err != nil {
		return nil, domain.Validation("%v", err)
	}
	if in.OrderID <= 0 {
		return nil, domain.Validation("order_id es obligatorio")
	}
	o, err := uc.repos.Orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if o == nil {
		return nil, domain.NotFound("orden %d no existe", in.OrderID)
	}
	if o.State != entity.OrderEntregado {
		return nil, domain.Conflict(domain.MsgNotDelivered)
	}

	fb := &entity.SupplierFeedback{
		OrderID:      o.ID,
		SupplierID:   o.SupplierID,
		SupervisorID: supervisorID,
		Result:       result,
		Message:      trimmed(in.Message),
		SentAt:       time.Now().UTC(),
	}
	if s, err := uc.catalog.GetSupplier(ctx, o.SupplierID); err == nil && s != nil {
		fb.SupplierName = s.Name
	}
	if err := uc.repos.Feedback.Create(ctx, fb); err != nil {
		return nil, domain.Storage(err)
	}
	uc.log.Info().Int64("order_id", o.ID).Int64("supplier_id", o.SupplierID).Str("result", string(result)).Msg("notificación a proveedor registrada")
	resp := toFeedbackResponse(fb)
	return &resp, nil
}

// GetSupplierFeedback detalle de una notificación.
func (uc *FulfillmentUseCase) GetSupplierFeedback(ctx context.Context, id int64) (*dto.SupplierFeedbackResponse, error) {
	fb, err := uc.repos.Feedback.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if fb == nil {
		return nil, domain.NotFound("notificación %d no existe", id)
	}
	out := toFeedbackResponse(fb)
	return &out, nil
}

// ListSupplierFeedback lista notificaciones, opcionalmente de una orden.
func (uc *FulfillmentUseCase) ListSupplierFeedback(ctx context.Context, orderID *int64) ([]dto.SupplierFeedbackResponse, error) {
	list, err := uc.repos.Feedback.List(ctx, orderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	out := make([]dto.SupplierFeedbackResponse, 0, len(list))
	for _, fb := range list {
		out = append(out, toFeedbackResponse(fb))
	}
	return out, nil
}
