package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// RequestHandler solicitudes de compra y su envío a proveedores.
type RequestHandler struct {
	requests *procurement.RequestUseCase
	sourcing *procurement.SourcingUseCase
	log      *logger.Logger
}

// NewRequestHandler construye el handler.
func NewRequestHandler(requests *procurement.RequestUseCase, sourcing *procurement.SourcingUseCase, log *logger.Logger) *RequestHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RequestHandler{requests: requests, sourcing: sourcing, log: log.Component("http.solicitudes")}
}

// Create godoc
// @Summary      Crear solicitud de compra
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.PurchaseRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.requests.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        estado      query  string  false  "Creada, Revisada, Aprobada, Rechazada, EnviadaAProveedores, Seleccionada"
// @Param        empleadoId  query  int     false  "Solicitante"
// @Success      200  {array}   dto.PurchaseRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	requesterID, ok := queryID(c, "empleadoId")
	if !ok {
		return badParam(c, "empleadoId")
	}
	list, err := h.requests.List(c.UserContext(), dto.RequestListQuery{State: c.Query("estado"), RequesterID: requesterID})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {object}  dto.PurchaseRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.requests.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Revise godoc
// @Summary      Modificar solicitud (jefe)
// @Description  Actualización parcial de cantidad y motivo. Una solicitud Creada pasa a Revisada.
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la solicitud"
// @Param        body  body  dto.RevisePurchaseRequest  true  "quantity, reason"
// @Success      200   {object}  dto.PurchaseRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes/{id} [put]
func (h *RequestHandler) Revise(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.RevisePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.requests.Revise(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar solicitud (jefe)
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true   "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  false  "comment"
// @Success      200   {object}  dto.PurchaseRequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes/{id}/aprobar [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.requests.Approve)
}

// Reject godoc
// @Summary      Rechazar solicitud (jefe)
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true   "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  false  "comment"
// @Success      200   {object}  dto.PurchaseRequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes/{id}/rechazar [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.requests.Reject)
}

func (h *RequestHandler) decide(c *fiber.Ctx, fn func(context.Context, int64, int64, dto.DecisionRequest) (*dto.PurchaseRequestResponse, error)) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.DecisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := fn(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// SendToSuppliers godoc
// @Summary      Enviar solicitud a proveedores (auxiliar)
// @Description  Exactamente tres proveedores distintos. La solicitud debe estar Aprobada.
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "ID de la solicitud"
// @Param        body  body  dto.SendToSuppliersRequest  true  "supplier_ids"
// @Success      200   {object}  dto.SendToSuppliersResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/procesos/solicitudes/{id}/enviar-a-proveedores [post]
func (h *RequestHandler) SendToSuppliers(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.SendToSuppliersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sourcing.SendToSuppliers(c.UserContext(), id, GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
