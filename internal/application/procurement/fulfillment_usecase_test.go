package procurement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Emisión de la orden
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateFromQuotation_EmitidaConTotalYPrimerEvento(t *testing.T) {
	f := newFixture(t)
	orderID, requestID := f.issuedOrder(t)

	o, err := f.fulfillment.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderEmitida), o.State)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, requestID, o.RequestID)
	assert.Equal(t, prov2, o.SupplierID)
	assert.Equal(t, 5, o.Quantity)
	require.Len(t, o.Tracking, 1)
	assert.Equal(t, string(entity.DispatchNoDespachado), o.Tracking[0].Status)
	assert.Contains(t, f.pub.Types(), entity.EventOrderIssued)
}

func TestCreateFromQuotation_Idempotente(t *testing.T) {
	f := newFixture(t)
	orderID, _ := f.issuedOrder(t)
	qID := f.store.Order(orderID).QuotationID

	resp, err := f.fulfillment.CreateFromQuotation(context.Background(), qID, auxiliarID)
	require.ErrorIs(t, err, domain.ErrConflict)
	var exists *procurement.OrderExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, orderID, exists.OrderID)

	require.NotNil(t, resp)
	assert.Equal(t, orderID, resp.OrderID)
	assert.True(t, resp.Existing)
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestCreateFromQuotation_RequiereAprobada(t *testing.T) {
	f := newFixture(t)
	id := f.sentRequest(t, 5)
	q1 := f.quote(t, id, prov1, 200)

	_, err := f.fulfillment.CreateFromQuotation(context.Background(), q1, auxiliarID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.fulfillment.CreateFromQuotation(context.Background(), 5555, auxiliarID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.store.OrderCount())
}

func TestCreateFromQuotation_FalloEnHistorialNoDejaOrden(t *testing.T) {
	f := newFixture(t)
	id := f.sentRequest(t, 5)
	q := f.quote(t, id, prov1, 200)
	_, err := f.award.AwardQuotation(context.Background(), q, gerenteID, dto.AwardRequest{})
	require.NoError(t, err)
	f.store.FailOn("Dispatch.Append", 0, testutil.ErrInjected)

	_, err = f.fulfillment.CreateFromQuotation(context.Background(), q, auxiliarID)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Zero(t, f.store.OrderCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordDispatch_HistorialOrdenadoYEntrega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.issuedOrder(t)

	_, err := f.fulfillment.RecordDispatch(ctx, orderID, auxiliarID, dto.DispatchRequest{Status: "EnRuta", Notes: strPtr("camión 3")})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderEmitida, f.store.Order(orderID).State)

	_, err = f.fulfillment.RecordDispatch(ctx, orderID, auxiliarID, dto.DispatchRequest{Status: "Entregado"})
	require.NoError(t, err)

	o, err := f.fulfillment.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderEntregado), o.State)
	require.Len(t, o.Tracking, 3)
	assert.Equal(t, "NoDespachado", o.Tracking[0].Status)
	assert.Equal(t, "EnRuta", o.Tracking[1].Status)
	assert.Equal(t, "camión 3", *o.Tracking[1].Notes)
	assert.Equal(t, "Entregado", o.Tracking[2].Status)
	for i := 1; i < len(o.Tracking); i++ {
		assert.False(t, o.Tracking[i].OccurredAt.Before(o.Tracking[i-1].OccurredAt))
	}
	assert.Contains(t, f.pub.Types(), entity.EventOrderDelivered)
}

// stampRecorder anota la hora que el caso de uso le pasa al historial antes de delegar en el almacén.
type stampRecorder struct {
	repository.DispatchEventRepository
	given []time.Time
}

func (r *stampRecorder) Append(ctx context.Context, ev *entity.DispatchEvent) error {
	r.given = append(r.given, ev.OccurredAt)
	return r.DispatchEventRepository.Append(ctx, ev)
}

type recordingRunner struct {
	st  *testutil.Store
	rec *stampRecorder
}

func (r *recordingRunner) Run(ctx context.Context, fn func(repository.Repositories) error) error {
	return r.st.Run(ctx, func(repos repository.Repositories) error {
		r.rec.DispatchEventRepository = repos.Dispatch
		repos.Dispatch = r.rec
		return fn(repos)
	})
}

func TestRecordDispatch_LaHoraDeCadaEventoLaPoneElAlmacen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := &stampRecorder{}
	f.fulfillment = procurement.NewFulfillmentUseCase(&recordingRunner{st: f.store, rec: rec},
		f.store.Repositories(), f.store.Catalog(), f.poster, f.pub, nil)

	orderID, _ := f.issuedOrder(t)
	ev, err := f.fulfillment.RecordDispatch(ctx, orderID, auxiliarID, dto.DispatchRequest{Status: "EnRuta"})
	require.NoError(t, err)

	require.Len(t, rec.given, 2)
	for _, at := range rec.given {
		assert.True(t, at.IsZero(), "el caso de uso no debe fijar la hora: %v", at)
	}
	assert.False(t, ev.OccurredAt.IsZero())

	o, err := f.fulfillment.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, o.Tracking, 2)
	assert.Equal(t, "NoDespachado", o.Tracking[0].Status)
	assert.Equal(t, "EnRuta", o.Tracking[1].Status)
	assert.True(t, ev.OccurredAt.Equal(o.Tracking[1].OccurredAt))
}

func TestRecordDispatch_EstadoDesconocido(t *testing.T) {
	f := newFixture(t)
	orderID, _ := f.issuedOrder(t)

	for _, st := range []string{"Perdido", "enruta", ""} {
		_, err := f.fulfillment.RecordDispatch(context.Background(), orderID, auxiliarID, dto.DispatchRequest{Status: st})
		assert.ErrorIs(t, err, domain.ErrValidation, "estado %q", st)
	}
	_, err := f.fulfillment.RecordDispatch(context.Background(), 8080, auxiliarID, dto.DispatchRequest{Status: "EnRuta"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conformidad del jefe y aceptación del empleado
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSupervisorConformity_RequiereEntregada(t *testing.T) {
	f := newFixture(t)
	orderID, _ := f.issuedOrder(t)

	_, err := f.fulfillment.RecordSupervisorConformity(context.Background(), orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgNotDelivered, domain.Detail(err))

	_, err = f.fulfillment.RecordSupervisorConformity(context.Background(), orderID, jefeID, dto.ConformityRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordEmployeeAcceptance_IngresaInventario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.deliveredOrder(t)

	o, err := f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "SI", o.SupervisorConformity)

	before := f.store.OnHand(productoID)
	resp, err := f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)

	assert.Equal(t, "SI", resp.Acceptance)
	require.NotNil(t, resp.ReceiptID)
	require.NotNil(t, resp.QuantityOnHand)
	assert.Equal(t, before+5, *resp.QuantityOnHand)
	assert.Equal(t, before+5, f.store.OnHand(productoID))
	assert.Equal(t, 1, f.store.ReceiptCount())

	movs := f.store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindPurchaseEntry, movs[0].Kind)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, fmt.Sprintf("OC:%d;RCV:%d", orderID, *resp.ReceiptID), movs[0].Reference)
	require.NotNil(t, movs[0].OrderID)
	assert.Equal(t, orderID, *movs[0].OrderID)
	assert.NotEmpty(t, movs[0].TransactionID)
	assert.Contains(t, f.pub.Types(), entity.EventInventoryReceived)

	n, err := f.store.Repositories().Movements.CountByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.fulfillment.GetOrder(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, got.ReceiptID)
	assert.Equal(t, *resp.ReceiptID, *got.ReceiptID)
}

func TestGetOrder_SinRecepcionNoTraeReceiptID(t *testing.T) {
	f := newFixture(t)
	orderID, _ := f.deliveredOrder(t)

	o, err := f.fulfillment.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Nil(t, o.ReceiptID)
}

func TestRecordEmployeeAcceptance_NoConformeNoMueveInventario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.deliveredOrder(t)
	_, err := f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)

	resp, err := f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(false), Comment: strPtr("llegó incompleto")})
	require.NoError(t, err)
	assert.Equal(t, "NO", resp.Acceptance)
	assert.Nil(t, resp.ReceiptID)

	assert.Equal(t, entity.ConformityNO, f.store.Order(orderID).EmployeeAcceptance)
	assert.Zero(t, f.store.OnHand(productoID))
	assert.Empty(t, f.store.Movements())
	assert.Zero(t, f.store.ReceiptCount())

	// Tras un NO el empleado todavía puede aceptar.
	resp, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 5, *resp.QuantityOnHand)
}

func TestRecordEmployeeAcceptance_SinConformidadDelJefe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.deliveredOrder(t)

	_, err := f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(false)})
	require.NoError(t, err)

	_, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgSupervisorRequired, domain.Detail(err))
	assert.Zero(t, f.store.OnHand(productoID))
	assert.Equal(t, entity.ConformityUnset, f.store.Order(orderID).EmployeeAcceptance)
}

func TestRecordEmployeeAcceptance_OrdenNoEntregada(t *testing.T) {
	f := newFixture(t)
	orderID, _ := f.issuedOrder(t)

	_, err := f.fulfillment.RecordEmployeeAcceptance(context.Background(), orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgNotDelivered, domain.Detail(err))
}

func TestRecordEmployeeAcceptance_ReintentoNoDuplicaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.deliveredOrder(t)
	_, err := f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)
	_, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)

	_, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.MsgAlreadyAccepted, domain.Detail(err))
	assert.Equal(t, 5, f.store.OnHand(productoID))
	assert.Len(t, f.store.Movements(), 1)
}

func TestRecordEmployeeAcceptance_FalloDeInventarioRevierteTodo(t *testing.T) {
	for _, op := range []string{"Receipts.AddLine", "Inventory.Increment", "Movements.Create"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			orderID, _ := f.deliveredOrder(t)
			_, err := f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
			require.NoError(t, err)
			f.store.FailOn(op, 0, testutil.ErrInjected)

			_, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
			require.ErrorIs(t, err, domain.ErrStorage)

			assert.Equal(t, entity.ConformityUnset, f.store.Order(orderID).EmployeeAcceptance)
			assert.Zero(t, f.store.OnHand(productoID))
			assert.Empty(t, f.store.Movements())
			assert.Zero(t, f.store.ReceiptCount())
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y notificaciones al proveedor
// ──────────────────────────────────────────────────────────────────────────────

func TestListOrders_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	entregada, _ := f.deliveredOrder(t)
	emitida, _ := f.issuedOrder(t)

	list, err := f.fulfillment.ListOrders(context.Background(), dto.OrderListQuery{State: "Entregado"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entregada, list[0].ID)

	list, err = f.fulfillment.ListOrders(context.Background(), dto.OrderListQuery{State: "Emitida"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, emitida, list[0].ID)

	_, err = f.fulfillment.GetOrder(context.Background(), 123456)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSupplierFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entregada, _ := f.deliveredOrder(t)
	emitida, _ := f.issuedOrder(t)

	fb, err := f.fulfillment.RecordSupplierFeedback(ctx, jefeID, dto.SupplierFeedbackRequest{
		OrderID: entregada, Result: "Bien", Message: strPtr("entrega puntual"),
	})
	require.NoError(t, err)
	assert.Equal(t, prov2, fb.SupplierID)
	assert.Equal(t, "Distribuidora Dos", fb.SupplierName)
	assert.Equal(t, "Bien", fb.Result)

	_, err = f.fulfillment.RecordSupplierFeedback(ctx, jefeID, dto.SupplierFeedbackRequest{OrderID: emitida, Result: "Mal"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.fulfillment.RecordSupplierFeedback(ctx, jefeID, dto.SupplierFeedbackRequest{OrderID: entregada, Result: "Regular"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.fulfillment.RecordSupplierFeedback(ctx, jefeID, dto.SupplierFeedbackRequest{OrderID: 999, Result: "Mal"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.fulfillment.ListSupplierFeedback(ctx, int64Ptr(entregada))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "entrega puntual", *list[0].Message)

	one, err := f.fulfillment.GetSupplierFeedback(ctx, fb.ID)
	require.NoError(t, err)
	assert.Equal(t, entregada, one.OrderID)
	assert.Equal(t, "Distribuidora Dos", one.SupplierName)

	_, err = f.fulfillment.GetSupplierFeedback(ctx, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reorden frente al ciclo de compra
// ──────────────────────────────────────────────────────────────────────────────

func TestReorder_LaSolicitudSigueAbiertaHastaLaRecepcion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID, _ := f.deliveredOrder(t)
	_, err := f.reorder.SetMinimum(ctx, productoID, dto.SetMinimumRequest{MinQuantity: intPtr(10)})
	require.NoError(t, err)

	// orden entregada pero sin recepción: la solicitud de origen cuenta como abierta
	out, err := f.reorder.Review(ctx, gerenteID)
	require.NoError(t, err)
	assert.Zero(t, out.Created)
	require.Len(t, out.Items, 1)
	assert.Equal(t, dto.ReorderPending, out.Items[0].Status)

	_, err = f.fulfillment.RecordSupervisorConformity(ctx, orderID, jefeID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)
	_, err = f.fulfillment.RecordEmployeeAcceptance(ctx, orderID, empleadoID, dto.ConformityRequest{Conforme: boolPtr(true)})
	require.NoError(t, err)
	require.Equal(t, 5, f.store.OnHand(productoID))

	out, err = f.reorder.Review(ctx, gerenteID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 5, out.Items[0].QuantityOnHand)
	assert.Equal(t, 15, out.Items[0].SuggestedQuantity)
	require.NotNil(t, out.Items[0].RequestID)
	assert.Equal(t, entity.RequestCreada, f.store.Request(*out.Items[0].RequestID).State)
}
