package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	gerente = int64(4)
	toner   = int64(11)
	sobres  = int64(12)
)

func newReorder(t *testing.T) (*inventory.ReorderUseCase, *testutil.Store) {
	t.Helper()
	st := testutil.NewStore()
	st.AddEmployee(gerente, "Diego Gerente", entity.RoleGerencia)
	st.AddProduct(resma, "Resma carta")
	st.AddProduct(toner, "Tóner negro")
	st.AddProduct(sobres, "Sobres manila")
	return inventory.NewReorderUseCase(st, st.Repositories().Inventory, st.Catalog(), nil), st
}

func minimum(t *testing.T, uc *inventory.ReorderUseCase, productID int64, minQty int) {
	t.Helper()
	_, err := uc.SetMinimum(context.Background(), productID, dto.SetMinimumRequest{MinQuantity: &minQty})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetMinimum
// ──────────────────────────────────────────────────────────────────────────────

func TestSetMinimum_ConservaExistencia(t *testing.T) {
	uc, st := newReorder(t)
	st.SetOnHand(resma, 7)

	minQty := 10
	item, err := uc.SetMinimum(context.Background(), resma, dto.SetMinimumRequest{MinQuantity: &minQty})
	require.NoError(t, err)

	assert.Equal(t, 7, item.QuantityOnHand)
	require.NotNil(t, item.MinQuantity)
	assert.Equal(t, 10, *item.MinQuantity)
	assert.True(t, item.BelowMinimum)
	assert.Equal(t, 7, st.OnHand(resma))
}

func TestSetMinimum_ProductoSinExistenciasQuedaEnCero(t *testing.T) {
	uc, _ := newReorder(t)

	minQty := 3
	item, err := uc.SetMinimum(context.Background(), toner, dto.SetMinimumRequest{MinQuantity: &minQty})
	require.NoError(t, err)
	assert.Equal(t, 0, item.QuantityOnHand)
	assert.True(t, item.BelowMinimum)
}

func TestSetMinimum_Validaciones(t *testing.T) {
	uc, _ := newReorder(t)
	ctx := context.Background()
	neg := -1
	cero := 0

	_, err := uc.SetMinimum(ctx, resma, dto.SetMinimumRequest{})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = uc.SetMinimum(ctx, resma, dto.SetMinimumRequest{MinQuantity: &neg})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = uc.SetMinimum(ctx, 0, dto.SetMinimumRequest{MinQuantity: &cero})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = uc.SetMinimum(ctx, 999, dto.SetMinimumRequest{MinQuantity: &cero})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Review
// ──────────────────────────────────────────────────────────────────────────────

func TestReview_CreaSolicitudParaProductosBajoMinimo(t *testing.T) {
	uc, st := newReorder(t)
	st.SetOnHand(resma, 4)
	st.SetOnHand(toner, 1)
	st.SetOnHand(sobres, 50)
	minimum(t, uc, resma, 5)
	minimum(t, uc, toner, 6)
	minimum(t, uc, sobres, 10)

	out, err := uc.Review(context.Background(), gerente)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Created)
	require.Len(t, out.Items, 2)
	// mayor faltante primero
	assert.Equal(t, toner, out.Items[0].ProductID)
	assert.Equal(t, 11, out.Items[0].SuggestedQuantity)
	assert.Equal(t, resma, out.Items[1].ProductID)
	assert.Equal(t, 6, out.Items[1].SuggestedQuantity)

	reqs := st.RequestsForProduct(resma)
	require.Len(t, reqs, 1)
	pr := reqs[0]
	assert.Equal(t, entity.RequestCreada, pr.State)
	assert.Equal(t, gerente, pr.RequesterID)
	assert.Equal(t, 6, pr.Quantity)
	require.NotNil(t, pr.Reason)
	assert.Equal(t, "Reposición: existencia 4, mínimo 5", *pr.Reason)
	require.NotNil(t, out.Items[1].RequestID)
	assert.Equal(t, pr.ID, *out.Items[1].RequestID)

	assert.Empty(t, st.RequestsForProduct(sobres))
}

func TestReview_IgnoraProductosSinMinimo(t *testing.T) {
	uc, st := newReorder(t)
	st.SetOnHand(resma, 0)

	out, err := uc.Review(context.Background(), gerente)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Zero(t, out.Created)
	assert.Empty(t, st.RequestsForProduct(resma))
}

func TestReview_NoDuplicaSiHaySolicitudAbierta(t *testing.T) {
	uc, st := newReorder(t)
	ctx := context.Background()
	minimum(t, uc, resma, 5)

	first, err := uc.Review(ctx, gerente)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := uc.Review(ctx, gerente)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	require.Len(t, second.Items, 1)
	assert.Equal(t, dto.ReorderPending, second.Items[0].Status)
	assert.Nil(t, second.Items[0].RequestID)
	assert.Len(t, st.RequestsForProduct(resma), 1)
}

func TestReview_SolicitudRechazadaNoBloquea(t *testing.T) {
	uc, st := newReorder(t)
	ctx := context.Background()
	minimum(t, uc, resma, 5)

	first, err := uc.Review(ctx, gerente)
	require.NoError(t, err)
	reqID := *first.Items[0].RequestID
	ok, err := st.Repositories().Requests.SetDecision(ctx, reqID, entity.RequestRechazada, gerente, nil, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	second, err := uc.Review(ctx, gerente)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Created)
	assert.Len(t, st.RequestsForProduct(resma), 2)
}

func TestReview_ActorInexistente(t *testing.T) {
	uc, _ := newReorder(t)

	_, err := uc.Review(context.Background(), 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReview_FalloAlCrearRevierteSoloEseProducto(t *testing.T) {
	uc, st := newReorder(t)
	minimum(t, uc, resma, 5)
	st.FailOn("Requests.Create", 0, errors.New("conexión perdida"))

	_, err := uc.Review(context.Background(), gerente)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Empty(t, st.RequestsForProduct(resma))
}
