// Package pdf genera la representación gráfica de la orden de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa compradora  │  N° Orden + Fecha + Estado   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Nombre / Email / Tel                            │
//	│  SOLICITANTE: Nombre + N° de solicitud                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SEGUIMIENTO: historial de despacho + conformidades         │
//	│  FOOTER: QR con la referencia de la orden                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

var _ report.OrderPDFGenerator = (*OrderPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// OrderPDFGenerator implementa report.OrderPDFGenerator usando Maroto v2.
type OrderPDFGenerator struct {
	company string
	printer *message.Printer
}

// NewOrderPDFGenerator construye el generador. company aparece en la cabecera como comprador.
func NewOrderPDFGenerator(company string) *OrderPDFGenerator {
	return &OrderPDFGenerator{
		company: nonEmpty(company, "Gestión de Compras"),
		printer: message.NewPrinter(language.LatinAmericanSpanish),
	}
}

// GenerateOrderPDF genera el PDF y devuelve sus bytes.
func (g *OrderPDFGenerator) GenerateOrderPDF(_ context.Context, doc *report.OrderDocument) ([]byte, error) {
	if doc == nil || doc.Order == nil {
		return nil, fmt.Errorf("pdf: documento vacío")
	}
	o := doc.Order

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Orden de compra %d", o.ID), true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(doc.Supplier))
	m.AddRows(requesterRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.detailRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(o))

	m.AddRows(line.NewRow(3))
	m.AddRows(trackingRows(o)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRow(o))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *OrderPDFGenerator) headerRow(doc *report.OrderDocument) core.Row {
	o := doc.Order
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.company, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generada: "+doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", o.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New(fmt.Sprintf("Fecha: %s   |   Estado: %s", o.CreatedAt.Format("02/01/2006"), o.State), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func supplierRow(s *entity.Supplier) core.Row {
	if s == nil {
		s = &entity.Supplier{}
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(s.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s",
				nonEmpty(s.Email, "—"),
				nonEmpty(s.Phone, "—"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func requesterRow(o *entity.OrderView) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("SOLICITANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Solicitud N° %d   |   Cotización N° %d",
				nonEmpty(o.RequesterName, "—"), o.RequestID, o.QuotationID,
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// detailRow la orden cubre una sola línea: el producto de la solicitud.
func (g *OrderPDFGenerator) detailRow(o *entity.OrderView) core.Row {
	unit := o.Price
	if o.Quantity > 0 {
		unit = o.Total.Div(decimal.NewFromInt(int64(o.Quantity)))
	}
	return row.New(7).Add(
		col.New(1).Add(text.New(fmt.Sprint(o.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(6).Add(text.New(o.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(2).Add(text.New(g.money(unit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(3).Add(text.New(g.money(o.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func (g *OrderPDFGenerator) totalRow(o *entity.OrderView) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL ORDEN:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(g.money(o.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func trackingRows(o *entity.OrderView) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("SEGUIMIENTO", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, ev := range o.Tracking {
		notes := ""
		if ev.Notes != nil {
			notes = " · " + *ev.Notes
		}
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(ev.OccurredAt.Format("02/01/2006 15:04")+"  "+string(ev.Status)+notes, props.Text{
				Size: 7, Color: colorGray, Left: 2,
			}),
		)))
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Conformidad jefe: %s   |   Aceptación empleado: %s",
			conformityLabel(o.SupervisorConformity), conformityLabel(o.EmployeeAcceptance),
		), props.Text{Size: 8, Top: 2}),
	)))
	return rows
}

func (g *OrderPDFGenerator) footerRow(o *entity.OrderView) core.Row {
	ref := fmt.Sprintf("OC:%d;COT:%d;TOTAL:%s", o.ID, o.QuotationID, o.Total.StringFixed(2))
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia de la orden", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3, Color: colorPrimary}),
			text.New(ref, props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray}),
			text.New("Presente este documento junto con la entrega.", props.Text{Size: 7, Top: 18, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func conformityLabel(c entity.Conformity) string {
	if c == entity.ConformityUnset {
		return "pendiente"
	}
	return string(c)
}

// money formatea con separadores de miles y dos decimales según la configuración regional.
func (g *OrderPDFGenerator) money(d decimal.Decimal) string {
	return "$" + g.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
