// Package xlsx genera el cuadro comparativo de cotizaciones con excelize.
package xlsx

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

const sheetName = "Comparativo"

var _ report.QuotationSheetBuilder = (*QuotationSheetBuilder)(nil)

var comparisonHeaders = []string{
	"Cotización", "Proveedor", "Precio", "Precio unitario", "Tiempo de entrega", "Condiciones", "Estado", "Motivo de rechazo",
}

// QuotationSheetBuilder construye el libro en memoria.
type QuotationSheetBuilder struct{}

// NewQuotationSheetBuilder crea el builder.
func NewQuotationSheetBuilder() *QuotationSheetBuilder { return &QuotationSheetBuilder{} }

// BuildQuotationSheet una fila por cotización (ya ordenadas por precio) y una fila final con la mejor oferta.
func (b *QuotationSheetBuilder) BuildQuotationSheet(_ context.Context, s *report.QuotationSheet) ([]byte, error) {
	if s == nil || s.Request == nil {
		return nil, fmt.Errorf("xlsx: comparativo sin solicitud")
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	winnerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2EFDA"}},
	})

	req := s.Request
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Solicitud N° %d · %s", req.ID, req.ProductName))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Cantidad: %d   Solicitante: %s   Estado: %s", req.Quantity, req.RequesterName, req.State))
	f.SetCellValue(sheetName, "A3", "Generado: "+s.GeneratedAt.Format("2006-01-02 15:04"))

	const headerRow = 5
	for i, h := range comparisonHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, headerRow)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, boldStyle)
	}

	var best *entity.QuotationView
	for i, q := range s.Quotations {
		row := headerRow + 1 + i
		price := q.Price.InexactFloat64()
		unit := price
		if req.Quantity > 0 {
			unit = q.Price.DivRound(decimal.NewFromInt(int64(req.Quantity)), 2).InexactFloat64()
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), q.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), q.SupplierName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), price)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), unit)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), deref(q.DeliveryTime))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), deref(q.Terms))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), string(q.State))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), deref(q.RejectionReason))
		f.SetCellStyle(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), moneyStyle)
		if q.State == entity.QuotationAprobada {
			f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), winnerStyle)
		}
		if q.State != entity.QuotationRechazada && (best == nil || q.Price.LessThan(best.Price)) {
			best = q
		}
	}

	summary := headerRow + len(s.Quotations) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summary), fmt.Sprintf("Cotizaciones: %d", len(s.Quotations)))
	if best != nil {
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summary), "Mejor oferta vigente: "+best.SupplierName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", summary), best.Price.InexactFloat64())
		f.SetCellStyle(sheetName, fmt.Sprintf("C%d", summary), fmt.Sprintf("C%d", summary), moneyStyle)
	}

	widths := []float64{12, 28, 14, 16, 18, 28, 12, 24}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
