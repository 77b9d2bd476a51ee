// Package report exporta documentos de solo lectura: orden de compra en PDF/XML y
// comparativo de cotizaciones en XLSX.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// Export archivo generado listo para enviarse al cliente.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	Digest      string // solo XML
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXML  = "application/xml"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportUseCase arma los documentos a partir de las vistas de lectura.
type ExportUseCase struct {
	repos   repository.Repositories
	catalog repository.CatalogRepository
	pdf     OrderPDFGenerator
	xml     OrderXMLBuilder
	sheet   QuotationSheetBuilder
	log     *logger.Logger
}

// NewExportUseCase construye el caso de uso. Cualquier generador puede ser nil; la exportación
// correspondiente responde entonces con InvalidState.
func NewExportUseCase(
	repos repository.Repositories,
	catalog repository.CatalogRepository,
	pdf OrderPDFGenerator,
	xml OrderXMLBuilder,
	sheet QuotationSheetBuilder,
	log *logger.Logger,
) *ExportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ExportUseCase{repos: repos, catalog: catalog, pdf: pdf, xml: xml, sheet: sheet, log: log.Component("report")}
}

func (uc *ExportUseCase) orderDocument(ctx context.Context, orderID int64) (*OrderDocument, error) {
	v, err := uc.repos.Orders.GetView(ctx, orderID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if v == nil {
		return nil, domain.NotFound("orden %d no existe", orderID)
	}
	if v.Tracking, err = uc.repos.Dispatch.ListByOrder(ctx, orderID); err != nil {
		return nil, domain.Storage(err)
	}
	sup, err := uc.catalog.GetSupplier(ctx, v.SupplierID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if sup == nil {
		sup = &entity.Supplier{ID: v.SupplierID, Name: v.SupplierName}
	}
	return &OrderDocument{Order: v, Supplier: sup, GeneratedAt: time.Now().UTC()}, nil
}

// OrderPDF orden de compra en PDF.
func (uc *ExportUseCase) OrderPDF(ctx context.Context, orderID int64) (*Export, error) {
	if uc.pdf == nil {
		return nil, domain.InvalidState("exportación PDF no configurada")
	}
	doc, err := uc.orderDocument(ctx, orderID)
	if err != nil {
		return nil, err
	}
	body, err := uc.pdf.GenerateOrderPDF(ctx, doc)
	if err != nil {
		uc.log.Error().Err(err).Int64("order_id", orderID).Msg("no se pudo generar el PDF")
		return nil, fmt.Errorf("report: pdf orden %d: %w", orderID, err)
	}
	return &Export{
		Filename:    fmt.Sprintf("OC-%06d.pdf", orderID),
		ContentType: ContentTypePDF,
		Body:        body,
	}, nil
}

// OrderXML orden de compra en XML con su digest.
func (uc *ExportUseCase) OrderXML(ctx context.Context, orderID int64) (*Export, error) {
	if uc.xml == nil {
		return nil, domain.InvalidState("exportación XML no configurada")
	}
	doc, err := uc.orderDocument(ctx, orderID)
	if err != nil {
		return nil, err
	}
	body, digest, err := uc.xml.BuildOrderXML(ctx, doc)
	if err != nil {
		uc.log.Error().Err(err).Int64("order_id", orderID).Msg("no se pudo generar el XML")
		return nil, fmt.Errorf("report: xml orden %d: %w", orderID, err)
	}
	return &Export{
		Filename:    fmt.Sprintf("OC-%06d.xml", orderID),
		ContentType: ContentTypeXML,
		Body:        body,
		Digest:      digest,
	}, nil
}

// QuotationComparison comparativo XLSX de las cotizaciones de una solicitud, de menor a mayor precio.
func (uc *ExportUseCase) QuotationComparison(ctx context.Context, requestID int64) (*Export, error) {
	if uc.sheet == nil {
		return nil, domain.InvalidState("exportación XLSX no configurada")
	}
	if requestID <= 0 {
		return nil, domain.Validation("solicitudId es obligatorio")
	}
	req, err := uc.repos.Requests.GetView(ctx, requestID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if req == nil {
		return nil, domain.NotFound("solicitud %d no existe", requestID)
	}
	list, err := uc.repos.Quotations.List(ctx, entity.QuotationFilter{RequestID: &requestID})
	if err != nil {
		return nil, domain.Storage(err)
	}
	body, err := uc.sheet.BuildQuotationSheet(ctx, &QuotationSheet{Request: req, Quotations: list, GeneratedAt: time.Now().UTC()})
	if err != nil {
		uc.log.Error().Err(err).Int64("request_id", requestID).Msg("no se pudo generar el comparativo")
		return nil, fmt.Errorf("report: comparativo solicitud %d: %w", requestID, err)
	}
	return &Export{
		Filename:    fmt.Sprintf("comparativo-solicitud-%d.xlsx", requestID),
		ContentType: ContentTypeXLSX,
		Body:        body,
	}, nil
}
