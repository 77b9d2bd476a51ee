package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RequestUC     *procurement.RequestUseCase
	SourcingUC    *procurement.SourcingUseCase
	AwardUC       *procurement.AwardUseCase
	FulfillmentUC *procurement.FulfillmentUseCase
	WorkflowUC    *procurement.WorkflowUseCase
	InventoryUC   *inventory.PostReceiptUseCase
	ReorderUC     *inventory.ReorderUseCase
	ExportUC      *report.ExportUseCase
	JWTSecret     string
	// OperationTimeout tope por petición (0 = sin tope).
	OperationTimeout time.Duration
	Logger           *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; cada operación
// restringe además los roles que pueden invocarla.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	anyRole := RequireRole(entity.AllRoles...)
	empleado := RequireRole(entity.RoleEmpleado)
	jefe := RequireRole(entity.RoleJefe)
	auxiliar := RequireRole(entity.RoleAuxiliar)
	gerencia := RequireRole(entity.RoleGerencia)
	jefeOGerencia := RequireRole(entity.RoleJefe, entity.RoleGerencia)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), OperationTimeout(deps.OperationTimeout))

	// Solicitudes
	requestHandler := NewRequestHandler(deps.RequestUC, deps.SourcingUC, log)
	solicitudes := api.Group("/procesos/solicitudes")
	solicitudes.Post("/", empleado, requestHandler.Create)
	solicitudes.Get("/", anyRole, requestHandler.List)
	solicitudes.Get("/:id", anyRole, requestHandler.GetByID)
	solicitudes.Put("/:id", jefe, requestHandler.Revise)
	solicitudes.Post("/:id/aprobar", jefe, requestHandler.Approve)
	solicitudes.Post("/:id/rechazar", jefe, requestHandler.Reject)
	solicitudes.Post("/:id/enviar-a-proveedores", auxiliar, requestHandler.SendToSuppliers)

	// Cotizaciones
	quotationHandler := NewQuotationHandler(deps.SourcingUC, deps.AwardUC, deps.WorkflowUC, deps.ExportUC, log)
	cotizaciones := api.Group("/procesos/cotizaciones")
	cotizaciones.Post("/", auxiliar, quotationHandler.Register)
	cotizaciones.Get("/", anyRole, quotationHandler.List)
	cotizaciones.Get("/pendientes", gerencia, quotationHandler.Pending)
	cotizaciones.Get("/comparativo", jefeOGerencia, quotationHandler.Comparison)
	cotizaciones.Get("/:id", anyRole, quotationHandler.GetByID)
	cotizaciones.Post("/:id/aprobar-final", gerencia, quotationHandler.Award)

	// Workflow: adjudicación + orden en una sola transacción
	api.Post("/workflow/cotizaciones/:id/aprobar", gerencia, quotationHandler.AwardAndIssue)

	// Órdenes
	orderHandler := NewOrderHandler(deps.FulfillmentUC, deps.ExportUC, log)
	ordenes := api.Group("/procesos/ordenes")
	ordenes.Post("/", auxiliar, orderHandler.Create)
	ordenes.Post("/desde-cotizacion/:id", auxiliar, orderHandler.CreateFromQuotation)
	ordenes.Get("/", anyRole, orderHandler.List)
	ordenes.Get("/:ordenId", anyRole, orderHandler.GetByID)
	ordenes.Post("/:ordenId/estado", auxiliar, orderHandler.Dispatch)
	ordenes.Post("/:ordenId/conformidad-jefe", jefe, orderHandler.SupervisorConformity)
	ordenes.Post("/:ordenId/notificar-producto", empleado, orderHandler.EmployeeAcceptance)
	ordenes.Get("/:ordenId/pdf", anyRole, orderHandler.PDF)
	ordenes.Get("/:ordenId/xml", anyRole, orderHandler.XML)

	// Notificaciones a proveedor
	notificaciones := api.Group("/procesos/notificaciones-proveedor")
	notificaciones.Post("/", jefe, orderHandler.RecordFeedback)
	notificaciones.Post("/:ordenId", jefe, orderHandler.RecordFeedbackForOrder)
	notificaciones.Get("/", anyRole, orderHandler.ListFeedback)
	notificaciones.Get("/:id", anyRole, orderHandler.GetFeedback)

	// Inventario: consulta, mínimos y revisión de reorden
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.ReorderUC, log)
	inventario := api.Group("/inventario")
	inventario.Get("/", anyRole, inventoryHandler.List)
	inventario.Get("/:productoId", anyRole, inventoryHandler.GetByProduct)
	inventario.Get("/:productoId/movimientos", anyRole, inventoryHandler.Movements)
	inventario.Put("/:productoId/minimo", jefeOGerencia, inventoryHandler.SetMinimum)
	api.Post("/workflow/inventario/revisar-reorden", jefeOGerencia, inventoryHandler.ReviewReorder)
}
