package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

func TestParseRequestState_Exacto(t *testing.T) {
	st, err := entity.ParseRequestState("EnviadaAProveedores")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestEnviadaAProveedores, st)

	for _, s := range []string{"aprobada", "APROBADA", " Aprobada", ""} {
		_, err := entity.ParseRequestState(s)
		assert.Error(t, err, s)
	}
}

func TestRequestState_Editable(t *testing.T) {
	assert.True(t, entity.RequestCreada.Editable())
	assert.True(t, entity.RequestRevisada.Editable())
	for _, st := range []entity.RequestState{
		entity.RequestAprobada, entity.RequestRechazada,
		entity.RequestEnviadaAProveedores, entity.RequestSeleccionada,
	} {
		assert.False(t, st.Editable(), st)
		assert.True(t, st.Decided(), st)
	}
}

func TestParseEstadosCerrados(t *testing.T) {
	_, err := entity.ParseQuotationState("Recibida")
	assert.NoError(t, err)
	_, err = entity.ParseQuotationState("Ganadora")
	assert.Error(t, err)

	_, err = entity.ParseOrderState("Entregado")
	assert.NoError(t, err)
	_, err = entity.ParseOrderState("Entregada")
	assert.Error(t, err)

	_, err = entity.ParseDispatchStatus("EnRuta")
	assert.NoError(t, err)
	_, err = entity.ParseDispatchStatus("Perdido")
	assert.Error(t, err)

	_, err = entity.ParseFeedbackResult("Mal")
	assert.NoError(t, err)
	_, err = entity.ParseFeedbackResult("Regular")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, r := range entity.AllRoles {
		got, err := entity.ParseRole(r)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := entity.ParseRole("jefe")
	assert.Error(t, err)
}

func TestConformityFrom(t *testing.T) {
	assert.Equal(t, entity.ConformitySI, entity.ConformityFrom(true))
	assert.Equal(t, entity.ConformityNO, entity.ConformityFrom(false))
}
