package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// InventoryHandler consulta de existencias, mínimos y revisión de reorden.
// Las entradas se registran únicamente por la aceptación del empleado.
type InventoryHandler struct {
	uc      *inventory.PostReceiptUseCase
	reorder *inventory.ReorderUseCase
	log     *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.PostReceiptUseCase, reorder *inventory.ReorderUseCase, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{uc: uc, reorder: reorder, log: log.Component("http.inventario")}
}

// List godoc
// @Summary      Existencias por producto
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.InventoryItemResponse
// @Router       /api/inventario [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListInventory(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByProduct godoc
// @Summary      Existencias de un producto
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        productoId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/{productoId} [get]
func (h *InventoryHandler) GetByProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "productoId")
	if !ok {
		return badParam(c, "productoId")
	}
	out, err := h.uc.GetInventory(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos de un producto
// @Description  Más recientes primero. limit por defecto 20, máximo 100.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        productoId  path   int  true   "ID del producto"
// @Param        limit       query  int  false  "Tamaño de página"
// @Param        offset      query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventario/{productoId}/movimientos [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	id, ok := paramID(c, "productoId")
	if !ok {
		return badParam(c, "productoId")
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badParam(c, "limit/offset")
	}
	out, err := h.uc.ListMovements(c.UserContext(), id, page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// SetMinimum godoc
// @Summary      Fijar el mínimo de existencia de un producto (jefe, gerencia)
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productoId  path  int                    true  "ID del producto"
// @Param        body        body  dto.SetMinimumRequest  true  "min_quantity"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/{productoId}/minimo [put]
func (h *InventoryHandler) SetMinimum(c *fiber.Ctx) error {
	id, ok := paramID(c, "productoId")
	if !ok {
		return badParam(c, "productoId")
	}
	var in dto.SetMinimumRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.reorder.SetMinimum(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ReviewReorder godoc
// @Summary      Revisión de reorden (jefe, gerencia)
// @Description  Crea una solicitud por cada producto en o bajo su mínimo sin solicitud abierta.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReorderReviewResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/workflow/inventario/revisar-reorden [post]
func (h *InventoryHandler) ReviewReorder(c *fiber.Ctx) error {
	out, err := h.reorder.Review(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
