package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// OrderHandler órdenes de compra: emisión, despacho, conformidades y documentos.
type OrderHandler struct {
	fulfillment *procurement.FulfillmentUseCase
	exports     *report.ExportUseCase
	log         *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(fulfillment *procurement.FulfillmentUseCase, exports *report.ExportUseCase, log *logger.Logger) *OrderHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderHandler{fulfillment: fulfillment, exports: exports, log: log.Component("http.ordenes")}
}

// Create godoc
// @Summary      Emitir orden de compra (auxiliar)
// @Description  Desde una cotización Aprobada. Si ya existe orden responde 409 con su id.
// @Tags         ordenes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "quotation_id"
// @Success      201   {object}  dto.OrderCreatedResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.OrderConflictResponse
// @Router       /api/procesos/ordenes [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.QuotationID <= 0 {
		return badParam(c, "quotation_id")
	}
	return h.create(c, in.QuotationID)
}

// CreateFromQuotation godoc
// @Summary      Emitir orden desde cotización (auxiliar)
// @Tags         ordenes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la cotización"
// @Success      201  {object}  dto.OrderCreatedResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.OrderConflictResponse
// @Router       /api/procesos/ordenes/desde-cotizacion/{id} [post]
func (h *OrderHandler) CreateFromQuotation(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	return h.create(c, id)
}

func (h *OrderHandler) create(c *fiber.Ctx, quotationID int64) error {
	out, err := h.fulfillment.CreateFromQuotation(c.UserContext(), quotationID, GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         ordenes
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "Emitida, Entregado"
// @Param        proveedorId  query  int     false  "Filtrar por proveedor"
// @Success      200  {array}   dto.OrderResponse
// @Router       /api/procesos/ordenes [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	supplierID, ok := queryID(c, "proveedorId")
	if !ok {
		return badParam(c, "proveedorId")
	}
	list, err := h.fulfillment.ListOrders(c.UserContext(), dto.OrderListQuery{State: c.Query("estado"), SupplierID: supplierID})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener orden con su historial de despacho
// @Tags         ordenes
// @Security     Bearer
// @Produce      json
// @Param        ordenId  path  int  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	out, err := h.fulfillment.GetOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Dispatch godoc
// @Summary      Registrar estado de despacho (auxiliar)
// @Description  Siempre agrega un evento al historial; Entregado marca la orden como entregada.
// @Tags         ordenes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordenId  path  int                  true  "ID de la orden"
// @Param        body     body  dto.DispatchRequest  true  "status: NoDespachado | EnCamino | Entregado"
// @Success      201  {object}  dto.DispatchEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId}/estado [post]
func (h *OrderHandler) Dispatch(c *fiber.Ctx) error {
	id, ok := paramID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	var in dto.DispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.fulfillment.RecordDispatch(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SupervisorConformity godoc
// @Summary      Conformidad del jefe
// @Tags         ordenes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordenId  path  int                    true  "ID de la orden"
// @Param        body     body  dto.ConformityRequest  true  "conforme, comment"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId}/conformidad-jefe [post]
func (h *OrderHandler) SupervisorConformity(c *fiber.Ctx) error {
	id, in, ok, err := conformityInput(c)
	if !ok {
		return err
	}
	out, err := h.fulfillment.RecordSupervisorConformity(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// EmployeeAcceptance godoc
// @Summary      Aceptación del empleado
// @Description  conforme=true registra la recepción y la entrada a inventario en una sola transacción.
// @Tags         ordenes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordenId  path  int                    true  "ID de la orden"
// @Param        body     body  dto.ConformityRequest  true  "conforme, comment"
// @Success      200  {object}  dto.AcceptanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId}/notificar-producto [post]
func (h *OrderHandler) EmployeeAcceptance(c *fiber.Ctx) error {
	id, in, ok, err := conformityInput(c)
	if !ok {
		return err
	}
	out, err := h.fulfillment.RecordEmployeeAcceptance(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func conformityInput(c *fiber.Ctx) (int64, dto.ConformityRequest, bool, error) {
	var in dto.ConformityRequest
	id, ok := paramID(c, "ordenId")
	if !ok {
		return 0, in, false, badParam(c, "ordenId")
	}
	if err := c.BodyParser(&in); err != nil {
		return 0, in, false, badBody(c)
	}
	return id, in, true, nil
}

// PDF godoc
// @Summary      Orden de compra en PDF
// @Tags         ordenes
// @Security     Bearer
// @Produce      application/pdf
// @Param        ordenId  path  int  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId}/pdf [get]
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	id, ok := paramID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	exp, err := h.exports.OrderPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendExport(c, exp)
}

// XML godoc
// @Summary      Orden de compra en XML (UBL 2.1)
// @Description  El header X-Document-Digest lleva el SHA-256 de la forma canónica (C14N).
// @Tags         ordenes
// @Security     Bearer
// @Produce      application/xml
// @Param        ordenId  path  int  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/ordenes/{ordenId}/xml [get]
func (h *OrderHandler) XML(c *fiber.Ctx) error {
	id, ok := paramID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	exp, err := h.exports.OrderXML(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendExport(c, exp)
}

// RecordFeedback godoc
// @Summary      Notificar resultado al proveedor (jefe)
// @Tags         notificaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplierFeedbackRequest  true  "order_id, result (Bien | Mal), message"
// @Success      201  {object}  dto.SupplierFeedbackResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/procesos/notificaciones-proveedor [post]
func (h *OrderHandler) RecordFeedback(c *fiber.Ctx) error {
	var in dto.SupplierFeedbackRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.fulfillment.RecordSupplierFeedback(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordFeedbackForOrder godoc
// @Summary      Notificar resultado al proveedor de una orden (jefe)
// @Description  Igual que POST /notificaciones-proveedor, con la orden tomada de la ruta.
// @Tags         notificaciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ordenId  path  int                          true  "ID de la orden"
// @Param        body     body  dto.SupplierFeedbackRequest  true  "result (Bien | Mal), message"
// @Success      201  {object}  dto.SupplierFeedbackResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/procesos/notificaciones-proveedor/{ordenId} [post]
func (h *OrderHandler) RecordFeedbackForOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	var in dto.SupplierFeedbackRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.OrderID = id
	out, err := h.fulfillment.RecordSupplierFeedback(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetFeedback godoc
// @Summary      Obtener notificación a proveedor
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la notificación"
// @Success      200  {object}  dto.SupplierFeedbackResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/notificaciones-proveedor/{id} [get]
func (h *OrderHandler) GetFeedback(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.fulfillment.GetSupplierFeedback(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListFeedback godoc
// @Summary      Listar notificaciones a proveedores
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Param        ordenId  query  int  false  "Filtrar por orden"
// @Success      200  {array}   dto.SupplierFeedbackResponse
// @Router       /api/procesos/notificaciones-proveedor [get]
func (h *OrderHandler) ListFeedback(c *fiber.Ctx) error {
	orderID, ok := queryID(c, "ordenId")
	if !ok {
		return badParam(c, "ordenId")
	}
	list, err := h.fulfillment.ListSupplierFeedback(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}
