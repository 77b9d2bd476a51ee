package procurement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

func TestCreate_EstadoInicialCreada(t *testing.T) {
	f := newFixture(t)
	r, err := f.requests.Create(context.Background(), empleadoID, dto.CreatePurchaseRequest{
		ProductID: productoID, Quantity: 5, Reason: strPtr("  reposición mensual "),
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RequestCreada), r.State)
	assert.Equal(t, 5, r.Quantity)
	assert.Equal(t, "Ana Empleada", r.RequesterName)
	assert.Equal(t, "Resma carta", r.ProductName)
	require.NotNil(t, r.Reason)
	assert.Equal(t, "reposición mensual", *r.Reason)
}

func TestCreate_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	for _, qty := range []int{0, -3} {
		_, err := f.requests.Create(context.Background(), empleadoID, dto.CreatePurchaseRequest{ProductID: productoID, Quantity: qty})
		assert.ErrorIs(t, err, domain.ErrValidation, "cantidad %d", qty)
	}
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.Create(context.Background(), empleadoID, dto.CreatePurchaseRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevise_CreadaPasaARevisada(t *testing.T) {
	f := newFixture(t)
	id := f.newRequest(t, 5)

	r, err := f.requests.Revise(context.Background(), id, dto.RevisePurchaseRequest{Quantity: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequestRevisada), r.State)
	assert.Equal(t, 8, r.Quantity)
}

func TestRevise_ActualizacionParcial(t *testing.T) {
	f := newFixture(t)
	id := f.newRequest(t, 5)

	_, err := f.requests.Revise(context.Background(), id, dto.RevisePurchaseRequest{Reason: strPtr("urgente")})
	require.NoError(t, err)
	r, err := f.requests.Revise(context.Background(), id, dto.RevisePurchaseRequest{Quantity: intPtr(7)})
	require.NoError(t, err)

	assert.Equal(t, 7, r.Quantity)
	require.NotNil(t, r.Reason)
	assert.Equal(t, "urgente", *r.Reason, "el motivo no enviado se conserva")
	assert.Equal(t, string(entity.RequestRevisada), r.State, "Revisada se mantiene")
}

func TestRevise_EstadosFinalesParaEdicion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	aprobada := f.approvedRequest(t, 1)
	rechazada := f.newRequest(t, 1)
	_, err := f.requests.Reject(ctx, rechazada, jefeID, dto.DecisionRequest{})
	require.NoError(t, err)
	enviada := f.sentRequest(t, 1)

	for _, id := range []int64{aprobada, rechazada, enviada} {
		_, err := f.requests.Revise(ctx, id, dto.RevisePurchaseRequest{Quantity: intPtr(2)})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
}

func TestRevise_CantidadInvalidaYNoExiste(t *testing.T) {
	f := newFixture(t)
	id := f.newRequest(t, 5)

	_, err := f.requests.Revise(context.Background(), id, dto.RevisePurchaseRequest{Quantity: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.requests.Revise(context.Background(), 9999, dto.RevisePurchaseRequest{Quantity: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_RegistraRevisor(t *testing.T) {
	f := newFixture(t)
	id := f.newRequest(t, 5)

	r, err := f.requests.Approve(context.Background(), id, jefeID, dto.DecisionRequest{Comment: strPtr("ok")})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RequestAprobada), r.State)
	require.NotNil(t, r.ReviewerID)
	assert.Equal(t, jefeID, *r.ReviewerID)
	require.NotNil(t, r.ReviewedAt)
	assert.Equal(t, "ok", *r.ReviewerComment)
}

func TestApprove_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.requests.Approve(context.Background(), 12345, jefeID, dto.DecisionRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecision_RedecisionPermitidaPorDefecto(t *testing.T) {
	f := newFixture(t)
	id := f.approvedRequest(t, 5)

	r, err := f.requests.Reject(context.Background(), id, jefeID, dto.DecisionRequest{Comment: strPtr("presupuesto")})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RequestRechazada), r.State)
}

func TestDecision_RedecisionBloqueadaPorPolitica(t *testing.T) {
	policy := procurement.DefaultPolicy()
	policy.AllowRedecision = false
	f := newFixtureWithPolicy(t, policy)
	id := f.approvedRequest(t, 5)

	_, err := f.requests.Reject(context.Background(), id, jefeID, dto.DecisionRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, entity.RequestAprobada, f.store.Request(id).State)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	f.newRequest(t, 1)
	aprobada := f.approvedRequest(t, 2)

	list, err := f.requests.List(context.Background(), dto.RequestListQuery{State: "Aprobada"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aprobada, list[0].ID)

	_, err = f.requests.List(context.Background(), dto.RequestListQuery{State: "aprobada"})
	assert.ErrorIs(t, err, domain.ErrValidation, "los estados se comparan de forma exacta")
}
