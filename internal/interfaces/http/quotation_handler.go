package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// QuotationHandler consulta y adjudicación de cotizaciones.
type QuotationHandler struct {
	sourcing *procurement.SourcingUseCase
	award    *procurement.AwardUseCase
	workflow *procurement.WorkflowUseCase
	exports  *report.ExportUseCase
	log      *logger.Logger
}

// NewQuotationHandler construye el handler.
func NewQuotationHandler(
	sourcing *procurement.SourcingUseCase,
	award *procurement.AwardUseCase,
	workflow *procurement.WorkflowUseCase,
	exports *report.ExportUseCase,
	log *logger.Logger,
) *QuotationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &QuotationHandler{sourcing: sourcing, award: award, workflow: workflow, exports: exports, log: log.Component("http.cotizaciones")}
}

// List godoc
// @Summary      Listar cotizaciones
// @Tags         cotizaciones
// @Security     Bearer
// @Produce      json
// @Param        solicitudId  query  int     false  "Filtrar por solicitud"
// @Param        proveedorId  query  int     false  "Filtrar por proveedor"
// @Param        estado       query  string  false  "Recibida, Aprobada, Rechazada"
// @Success      200  {array}   dto.QuotationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/procesos/cotizaciones [get]
func (h *QuotationHandler) List(c *fiber.Ctx) error {
	requestID, ok := queryID(c, "solicitudId")
	if !ok {
		return badParam(c, "solicitudId")
	}
	supplierID, ok := queryID(c, "proveedorId")
	if !ok {
		return badParam(c, "proveedorId")
	}
	list, err := h.sourcing.ListQuotations(c.UserContext(), dto.QuotationListQuery{
		RequestID:  requestID,
		SupplierID: supplierID,
		State:      c.Query("estado"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// Register godoc
// @Summary      Registrar cotización de un proveedor (auxiliar)
// @Description  La solicitud debe haberse enviado al proveedor. price es obligatorio.
// @Tags         cotizaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterQuotationRequest  true  "request_id, supplier_id, price, delivery_time, terms"
// @Success      201   {object}  dto.QuotationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/cotizaciones [post]
func (h *QuotationHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sourcing.RegisterQuotation(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cotización
// @Tags         cotizaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la cotización"
// @Success      200  {object}  dto.QuotationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/cotizaciones/{id} [get]
func (h *QuotationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.sourcing.GetQuotation(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Pending godoc
// @Summary      Cotizaciones pendientes de adjudicación (gerencia)
// @Description  Cotizaciones Recibida de solicitudes sin ganadora, por solicitud descendente y precio ascendente.
// @Tags         cotizaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.QuotationResponse
// @Router       /api/procesos/cotizaciones/pendientes [get]
func (h *QuotationHandler) Pending(c *fiber.Ctx) error {
	list, err := h.sourcing.ListPendingForAward(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// Award godoc
// @Summary      Adjudicar cotización (gerencia)
// @Description  Aprueba la cotización y rechaza las demás de la misma solicitud en una sola transacción.
// @Tags         cotizaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int               true   "ID de la cotización"
// @Param        body  body  dto.AwardRequest  false  "rejection_reason"
// @Success      200   {object}  dto.AwardResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/cotizaciones/{id}/aprobar-final [post]
func (h *QuotationHandler) Award(c *fiber.Ctx) error {
	id, in, ok, err := h.awardInput(c)
	if !ok {
		return err
	}
	out, err := h.award.AwardQuotation(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// AwardAndIssue godoc
// @Summary      Adjudicar y emitir orden (gerencia)
// @Description  Adjudicación y creación de la orden de compra en una sola transacción.
// @Tags         workflow
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int               true   "ID de la cotización"
// @Param        body  body  dto.AwardRequest  false  "rejection_reason"
// @Success      201   {object}  dto.AwardAndIssueResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/workflow/cotizaciones/{id}/aprobar [post]
func (h *QuotationHandler) AwardAndIssue(c *fiber.Ctx) error {
	id, in, ok, err := h.awardInput(c)
	if !ok {
		return err
	}
	out, err := h.workflow.AwardAndIssue(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// awardInput ok=false significa que la respuesta de error ya fue escrita (err es su resultado).
func (h *QuotationHandler) awardInput(c *fiber.Ctx) (int64, dto.AwardRequest, bool, error) {
	var in dto.AwardRequest
	id, ok := paramID(c, "id")
	if !ok {
		return 0, in, false, badParam(c, "id")
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return 0, in, false, badBody(c)
		}
	}
	return id, in, true, nil
}

// Comparison godoc
// @Summary      Comparativo de cotizaciones en XLSX (jefe, gerencia)
// @Tags         cotizaciones
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        solicitudId  query  int  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/cotizaciones/comparativo [get]
func (h *QuotationHandler) Comparison(c *fiber.Ctx) error {
	requestID, err := strconv.ParseInt(c.Query("solicitudId"), 10, 64)
	if err != nil || requestID <= 0 {
		return badParam(c, "solicitudId")
	}
	exp, err := h.exports.QuotationComparison(c.UserContext(), requestID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendExport(c, exp)
}

// sendExport escribe el archivo como adjunto.
func sendExport(c *fiber.Ctx, exp *report.Export) error {
	c.Set(fiber.HeaderContentType, exp.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exp.Filename+`"`)
	if exp.Digest != "" {
		c.Set("X-Document-Digest", exp.Digest)
	}
	return c.Send(exp.Body)
}
