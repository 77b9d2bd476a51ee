package report

import (
	"context"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// OrderDocument datos que se imprimen en la orden de compra (PDF y XML).
type OrderDocument struct {
	Order       *entity.OrderView
	Supplier    *entity.Supplier
	GeneratedAt time.Time
}

// QuotationSheet cuadro comparativo de las cotizaciones de una solicitud.
type QuotationSheet struct {
	Request     *entity.RequestView
	Quotations  []*entity.QuotationView
	GeneratedAt time.Time
}

// OrderPDFGenerator representación gráfica de la orden de compra.
type OrderPDFGenerator interface {
	GenerateOrderPDF(ctx context.Context, doc *OrderDocument) ([]byte, error)
}

// OrderXMLBuilder documento XML de la orden y el digest SHA-256 de su forma canónica (hex).
type OrderXMLBuilder interface {
	BuildOrderXML(ctx context.Context, doc *OrderDocument) (body []byte, digest string, err error)
}

// QuotationSheetBuilder libro XLSX con el comparativo de cotizaciones.
type QuotationSheetBuilder interface {
	BuildQuotationSheet(ctx context.Context, sheet *QuotationSheet) ([]byte, error)
}
