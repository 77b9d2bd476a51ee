package xlsx_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/infrastructure/xlsx"
)

func quotation(id int64, supplier string, price int64, st entity.QuotationState) *entity.QuotationView {
	return &entity.QuotationView{
		Quotation:    entity.Quotation{ID: id, RequestID: 3, Price: decimal.NewFromInt(price), State: st},
		SupplierName: supplier,
	}
}

func TestBuildQuotationSheet_FilasYMejorOferta(t *testing.T) {
	sheet := &report.QuotationSheet{
		Request: &entity.RequestView{
			PurchaseRequest: entity.PurchaseRequest{ID: 3, Quantity: 5, State: entity.RequestEnviadaAProveedores},
			ProductName:     "Resma carta",
			RequesterName:   "Ana Empleada",
		},
		Quotations: []*entity.QuotationView{
			quotation(21, "Distribuidora Dos", 150, entity.QuotationRecibida),
			quotation(20, "Papelería Uno", 200, entity.QuotationRecibida),
		},
		GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	out, err := xlsx.NewQuotationSheetBuilder().BuildQuotationSheet(context.Background(), sheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Comparativo", "B5")
	require.NoError(t, err)
	assert.Equal(t, "Proveedor", v)

	v, _ = f.GetCellValue("Comparativo", "B6")
	assert.Equal(t, "Distribuidora Dos", v)
	v, _ = f.GetCellValue("Comparativo", "G7")
	assert.Equal(t, "Recibida", v)

	v, _ = f.GetCellValue("Comparativo", "A9")
	assert.Equal(t, "Cotizaciones: 2", v)
	v, _ = f.GetCellValue("Comparativo", "B9")
	assert.Equal(t, "Mejor oferta vigente: Distribuidora Dos", v)
}

func TestBuildQuotationSheet_SinCotizaciones(t *testing.T) {
	sheet := &report.QuotationSheet{
		Request: &entity.RequestView{PurchaseRequest: entity.PurchaseRequest{ID: 4, Quantity: 1}},
	}
	out, err := xlsx.NewQuotationSheetBuilder().BuildQuotationSheet(context.Background(), sheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	v, _ := f.GetCellValue("Comparativo", "A7")
	assert.Equal(t, "Cotizaciones: 0", v)
}

func TestBuildQuotationSheet_SinSolicitud(t *testing.T) {
	_, err := xlsx.NewQuotationSheetBuilder().BuildQuotationSheet(context.Background(), &report.QuotationSheet{})
	assert.Error(t, err)
}
