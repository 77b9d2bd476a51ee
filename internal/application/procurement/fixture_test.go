package procurement_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: catálogo sembrado + casos de uso sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	empleadoID = int64(1)
	jefeID     = int64(2)
	auxiliarID = int64(3)
	gerenteID  = int64(4)
	productoID = int64(10)

	prov1 = int64(101)
	prov2 = int64(102)
	prov3 = int64(103)
	prov4 = int64(104)
	prov5 = int64(105)
)

type fixture struct {
	store       *testutil.Store
	pub         *testutil.RecordingPublisher
	requests    *procurement.RequestUseCase
	sourcing    *procurement.SourcingUseCase
	award       *procurement.AwardUseCase
	fulfillment *procurement.FulfillmentUseCase
	workflow    *procurement.WorkflowUseCase
	poster      *inventory.PostReceiptUseCase
	reorder     *inventory.ReorderUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, procurement.DefaultPolicy())
}

func newFixtureWithPolicy(t *testing.T, policy procurement.Policy) *fixture {
	t.Helper()
	st := testutil.NewStore()
	st.AddEmployee(empleadoID, "Ana Empleada", entity.RoleEmpleado)
	st.AddEmployee(jefeID, "Bruno Jefe", entity.RoleJefe)
	st.AddEmployee(auxiliarID, "Carla Auxiliar", entity.RoleAuxiliar)
	st.AddEmployee(gerenteID, "Diego Gerente", entity.RoleGerencia)
	st.AddProduct(productoID, "Resma carta")
	st.AddSupplier(prov1, "Papelería Uno")
	st.AddSupplier(prov2, "Distribuidora Dos")
	st.AddSupplier(prov3, "Suministros Tres")
	st.AddSupplier(prov4, "Comercial Cuatro")
	st.AddSupplier(prov5, "Mayorista Cinco")

	pub := &testutil.RecordingPublisher{}
	repos := st.Repositories()
	poster := inventory.NewPostReceiptUseCase(st, repos.Inventory, repos.Movements, nil)
	return &fixture{
		store:       st,
		pub:         pub,
		requests:    procurement.NewRequestUseCase(st, repos.Requests, repos.Links, st.Catalog(), policy, nil),
		sourcing:    procurement.NewSourcingUseCase(st, repos, st.Catalog(), pub, nil),
		award:       procurement.NewAwardUseCase(st, pub, policy, nil),
		fulfillment: procurement.NewFulfillmentUseCase(st, repos, st.Catalog(), poster, pub, nil),
		workflow:    procurement.NewWorkflowUseCase(st, pub, policy, nil),
		poster:      poster,
		reorder:     inventory.NewReorderUseCase(st, repos.Inventory, st.Catalog(), nil),
	}
}

func (f *fixture) newRequest(t *testing.T, qty int) int64 {
	t.Helper()
	r, err := f.requests.Create(context.Background(), empleadoID, dto.CreatePurchaseRequest{ProductID: productoID, Quantity: qty})
	require.NoError(t, err)
	return r.ID
}

func (f *fixture) approvedRequest(t *testing.T, qty int) int64 {
	t.Helper()
	id := f.newRequest(t, qty)
	_, err := f.requests.Approve(context.Background(), id, jefeID, dto.DecisionRequest{})
	require.NoError(t, err)
	return id
}

func (f *fixture) sentRequest(t *testing.T, qty int) int64 {
	t.Helper()
	id := f.approvedRequest(t, qty)
	_, err := f.sourcing.SendToSuppliers(context.Background(), id, auxiliarID,
		dto.SendToSuppliersRequest{SupplierIDs: []int64{prov1, prov2, prov3}})
	require.NoError(t, err)
	return id
}

func (f *fixture) quote(t *testing.T, requestID, supplierID int64, price int64) int64 {
	t.Helper()
	q, err := f.sourcing.RegisterQuotation(context.Background(), dto.RegisterQuotationRequest{
		RequestID:  requestID,
		SupplierID: supplierID,
		Price:      priceOf(price),
	})
	require.NoError(t, err)
	return q.ID
}

// issuedOrder solicitud de 5 unidades, dos cotizaciones, gana la de 150 y se emite la orden.
func (f *fixture) issuedOrder(t *testing.T) (orderID, requestID int64) {
	t.Helper()
	ctx := context.Background()
	requestID = f.sentRequest(t, 5)
	f.quote(t, requestID, prov1, 200)
	q2 := f.quote(t, requestID, prov2, 150)
	_, err := f.award.AwardQuotation(ctx, q2, gerenteID, dto.AwardRequest{})
	require.NoError(t, err)
	created, err := f.fulfillment.CreateFromQuotation(ctx, q2, auxiliarID)
	require.NoError(t, err)
	return created.OrderID, requestID
}

func (f *fixture) deliveredOrder(t *testing.T) (orderID, requestID int64) {
	t.Helper()
	orderID, requestID = f.issuedOrder(t)
	_, err := f.fulfillment.RecordDispatch(context.Background(), orderID, auxiliarID, dto.DispatchRequest{Status: "Entregado"})
	require.NoError(t, err)
	return orderID, requestID
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func int64Ptr(i int64) *int64 { return &i }

func priceOf(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}
