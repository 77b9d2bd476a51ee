package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fakeGenerators struct {
	lastOrder *report.OrderDocument
	lastSheet *report.QuotationSheet
	err       error
}

func (g *fakeGenerators) GenerateOrderPDF(_ context.Context, doc *report.OrderDocument) ([]byte, error) {
	g.lastOrder = doc
	return []byte("%PDF-fake"), g.err
}

func (g *fakeGenerators) BuildOrderXML(_ context.Context, doc *report.OrderDocument) ([]byte, string, error) {
	g.lastOrder = doc
	return []byte("<Order/>"), "abc123", g.err
}

func (g *fakeGenerators) BuildQuotationSheet(_ context.Context, s *report.QuotationSheet) ([]byte, error) {
	g.lastSheet = s
	return []byte("xlsx"), g.err
}

// seed deja una solicitud con dos cotizaciones y una orden emitida sobre la más barata.
func seed(t *testing.T) (st *testutil.Store, requestID, orderID int64) {
	t.Helper()
	ctx := context.Background()
	st = testutil.NewStore()
	st.AddEmployee(1, "Ana Empleada", entity.RoleEmpleado)
	st.AddProduct(10, "Resma carta")
	st.AddSupplier(101, "Papelería Uno")
	st.AddSupplier(102, "Distribuidora Dos")
	repos := st.Repositories()

	pr := &entity.PurchaseRequest{RequesterID: 1, ProductID: 10, Quantity: 5, State: entity.RequestEnviadaAProveedores}
	require.NoError(t, repos.Requests.Create(ctx, pr))
	var cheapest int64
	for _, s := range []struct {
		id    int64
		price int64
	}{{101, 200}, {102, 150}} {
		_, err := repos.Links.Ensure(ctx, pr.ID, s.id, time.Now().UTC())
		require.NoError(t, err)
		q := &entity.Quotation{RequestID: pr.ID, SupplierID: s.id, Price: decimal.NewFromInt(s.price), State: entity.QuotationRecibida}
		require.NoError(t, repos.Quotations.Create(ctx, q))
		cheapest = q.ID
	}
	require.NoError(t, repos.Quotations.MarkAwarded(ctx, cheapest, 4, time.Now().UTC()))
	o := &entity.PurchaseOrder{QuotationID: cheapest, SupplierID: 102, Total: decimal.NewFromInt(150), State: entity.OrderEmitida}
	require.NoError(t, repos.Orders.Create(ctx, o))
	require.NoError(t, repos.Dispatch.Append(ctx, &entity.DispatchEvent{OrderID: o.ID, Status: entity.DispatchNoDespachado, OccurredAt: o.CreatedAt}))
	return st, pr.ID, o.ID
}

func newExport(st *testutil.Store, g *fakeGenerators) *report.ExportUseCase {
	return report.NewExportUseCase(st.Repositories(), st.Catalog(), g, g, g, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderPDF_ArmaDocumentoConHistorial(t *testing.T) {
	st, _, orderID := seed(t)
	g := &fakeGenerators{}

	out, err := newExport(st, g).OrderPDF(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, report.ContentTypePDF, out.ContentType)
	assert.Contains(t, out.Filename, ".pdf")

	require.NotNil(t, g.lastOrder)
	assert.Equal(t, "Distribuidora Dos", g.lastOrder.Supplier.Name)
	assert.Equal(t, 5, g.lastOrder.Order.Quantity)
	assert.Len(t, g.lastOrder.Order.Tracking, 1)
}

func TestOrderXML_IncluyeDigest(t *testing.T) {
	st, _, orderID := seed(t)

	out, err := newExport(st, &fakeGenerators{}).OrderXML(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", out.Digest)
	assert.Equal(t, report.ContentTypeXML, out.ContentType)
}

func TestOrderExports_OrdenInexistente(t *testing.T) {
	st, _, _ := seed(t)
	uc := newExport(st, &fakeGenerators{})

	_, err := uc.OrderPDF(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.OrderXML(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuotationComparison(t *testing.T) {
	st, requestID, _ := seed(t)
	g := &fakeGenerators{}

	out, err := newExport(st, g).QuotationComparison(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, report.ContentTypeXLSX, out.ContentType)

	require.NotNil(t, g.lastSheet)
	require.Len(t, g.lastSheet.Quotations, 2)
	assert.True(t, g.lastSheet.Quotations[0].Price.LessThan(g.lastSheet.Quotations[1].Price), "ordenadas por precio")
	assert.Equal(t, "Resma carta", g.lastSheet.Request.ProductName)

	_, err = newExport(st, g).QuotationComparison(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = newExport(st, g).QuotationComparison(context.Background(), 8888)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExports_ErrorDelGeneradorYNoConfigurado(t *testing.T) {
	st, requestID, orderID := seed(t)
	boom := errors.New("fuente no encontrada")

	_, err := newExport(st, &fakeGenerators{err: boom}).OrderPDF(context.Background(), orderID)
	assert.ErrorIs(t, err, boom)

	uc := report.NewExportUseCase(st.Repositories(), st.Catalog(), nil, nil, nil, nil)
	_, err = uc.OrderPDF(context.Background(), orderID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = uc.QuotationComparison(context.Background(), requestID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
