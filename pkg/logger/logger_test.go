package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gestion-compras/pkg/logger"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "info").Component("award")

	l.Info().Int64("quotation_id", 7).Msg("adjudicada")

	out := buf.String()
	assert.Contains(t, out, `"component":"award"`)
	assert.Contains(t, out, `"quotation_id":7`)
}

func TestNewWithWriter_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, "warn")

	l.Info().Msg("no debe salir")
	assert.Empty(t, buf.String())

	l.Warn().Msg("sí")
	assert.Contains(t, buf.String(), "sí")
}

func TestNop_NoFalla(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("x") })
}
