package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Solicitudes ─────────────────────────────────────────────────────────────

// CreatePurchaseRequest body para POST /api/procesos/solicitudes.
type CreatePurchaseRequest struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Reason    *string `json:"reason,omitempty"`
}

// RevisePurchaseRequest body para PUT /api/procesos/solicitudes/:id (actualización parcial).
type RevisePurchaseRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}

// DecisionRequest body para aprobar/rechazar una solicitud.
type DecisionRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// RequestListQuery filtros de GET /api/procesos/solicitudes.
type RequestListQuery struct {
	State       string `query:"estado"`
	RequesterID *int64 `query:"empleadoId"`
}

// PurchaseRequestResponse solicitud con nombres de solicitante y producto.
type PurchaseRequestResponse struct {
	ID              int64      `json:"id"`
	RequesterID     int64      `json:"requester_id"`
	RequesterName   string     `json:"requester_name,omitempty"`
	ProductID       int64      `json:"product_id"`
	ProductName     string     `json:"product_name,omitempty"`
	Quantity        int        `json:"quantity"`
	Reason          *string    `json:"reason,omitempty"`
	State           string     `json:"state"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewerID      *int64     `json:"reviewer_id,omitempty"`
	ReviewerComment *string    `json:"reviewer_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	Suppliers []InvitedSupplierResponse `json:"suppliers,omitempty"`
}

// InvitedSupplierResponse proveedor al que se envió la solicitud.
type InvitedSupplierResponse struct {
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// ── Abastecimiento ──────────────────────────────────────────────────────────

// SendToSuppliersRequest body para POST /api/procesos/solicitudes/:id/enviar-a-proveedores.
type SendToSuppliersRequest struct {
	SupplierIDs []int64 `json:"supplier_ids"`
}

// SendToSuppliersResponse resultado del envío a proveedores.
type SendToSuppliersResponse struct {
	RequestID    int64   `json:"request_id"`
	State        string  `json:"state"`
	SupplierIDs  []int64 `json:"supplier_ids"`
	LinksCreated int     `json:"links_created"`
}

// RegisterQuotationRequest body para POST /api/procesos/cotizaciones. Price es obligatorio (0 vale).
type RegisterQuotationRequest struct {
	RequestID    int64            `json:"request_id"`
	SupplierID   int64            `json:"supplier_id"`
	Price        *decimal.Decimal `json:"price"`
	DeliveryTime *string          `json:"delivery_time,omitempty"`
	Terms        *string          `json:"terms,omitempty"`
}

// QuotationListQuery filtros de GET /api/procesos/cotizaciones.
type QuotationListQuery struct {
	RequestID  *int64 `query:"solicitudId"`
	SupplierID *int64 `query:"proveedorId"`
	State      string `query:"estado"`
}

// QuotationResponse cotización enriquecida.
type QuotationResponse struct {
	ID              int64           `json:"id"`
	RequestID       int64           `json:"request_id"`
	SupplierID      int64           `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	ProductID       int64           `json:"product_id,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	RequesterID     int64           `json:"requester_id,omitempty"`
	RequesterName   string          `json:"requester_name,omitempty"`
	Quantity        int             `json:"quantity,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DeliveryTime    *string         `json:"delivery_time,omitempty"`
	Terms           *string         `json:"terms,omitempty"`
	State           string          `json:"state"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	AwardedBy       *int64          `json:"awarded_by,omitempty"`
	AwardedAt       *time.Time      `json:"awarded_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ── Adjudicación ────────────────────────────────────────────────────────────

// AwardRequest body para adjudicar una cotización.
type AwardRequest struct {
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// AwardResponse resultado de la adjudicación.
type AwardResponse struct {
	RequestID     int64 `json:"request_id"`
	QuotationID   int64 `json:"quotation_id"`
	RejectedCount int64 `json:"rejected_count"`
}

// AwardAndIssueResponse adjudicación + orden emitida en una sola transacción.
type AwardAndIssueResponse struct {
	RequestID     int64 `json:"request_id"`
	QuotationID   int64 `json:"quotation_id"`
	RejectedCount int64 `json:"rejected_count"`
	OrderID       int64 `json:"order_id"`
}

// ── Órdenes ─────────────────────────────────────────────────────────────────

// CreateOrderRequest body para POST /api/procesos/ordenes.
type CreateOrderRequest struct {
	QuotationID int64 `json:"quotation_id"`
}

// OrderCreatedResponse id de la orden; Existing=true cuando ya existía para la cotización.
type OrderCreatedResponse struct {
	OrderID  int64 `json:"order_id"`
	Existing bool  `json:"existing,omitempty"`
}

// DispatchRequest body para POST /api/procesos/ordenes/:id/despacho.
type DispatchRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// DispatchEventResponse registro del historial de despacho.
type DispatchEventResponse struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      *string   `json:"notes,omitempty"`
}

// ConformityRequest body para conformidad del jefe y aceptación del empleado.
type ConformityRequest struct {
	Conforme *bool   `json:"conforme"`
	Comment  *string `json:"comment,omitempty"`
}

// AcceptanceResponse resultado de la aceptación; ReceiptID solo si se registró entrada a inventario.
type AcceptanceResponse struct {
	OrderID        int64  `json:"order_id"`
	Acceptance     string `json:"acceptance"`
	ReceiptID      *int64 `json:"receipt_id,omitempty"`
	QuantityOnHand *int   `json:"quantity_on_hand,omitempty"`
}

// OrderListQuery filtros de GET /api/procesos/ordenes.
type OrderListQuery struct {
	State      string `query:"estado"`
	SupplierID *int64 `query:"proveedorId"`
}

// OrderResponse cabecera de la orden enriquecida más su historial de despacho.
type OrderResponse struct {
	ID                   int64                   `json:"id"`
	QuotationID          int64                   `json:"quotation_id"`
	RequestID            int64                   `json:"request_id"`
	SupplierID           int64                   `json:"supplier_id"`
	SupplierName         string                  `json:"supplier_name"`
	RequesterID          int64                   `json:"requester_id"`
	RequesterName        string                  `json:"requester_name"`
	ProductID            int64                   `json:"product_id"`
	ProductName          string                  `json:"product_name"`
	Quantity             int                     `json:"quantity"`
	Price                decimal.Decimal         `json:"price"`
	Total                decimal.Decimal         `json:"total"`
	State                string                  `json:"state"`
	CreatedAt            time.Time               `json:"created_at"`
	SupervisorConformity string                  `json:"supervisor_conformity,omitempty"`
	SupervisorID         *int64                  `json:"supervisor_id,omitempty"`
	SupervisorComment    *string                 `json:"supervisor_comment,omitempty"`
	EmployeeAcceptance   string                  `json:"employee_acceptance,omitempty"`
	EmployeeID           *int64                  `json:"employee_id,omitempty"`
	EmployeeComment      *string                 `json:"employee_comment,omitempty"`
	ReceiptID            *int64                  `json:"receipt_id,omitempty"`
	Tracking             []DispatchEventResponse `json:"tracking,omitempty"`
}

// ── Notificaciones a proveedor ──────────────────────────────────────────────

// SupplierFeedbackRequest body para POST /api/procesos/notificaciones-proveedor.
type SupplierFeedbackRequest struct {
	OrderID int64   `json:"order_id"`
	Result  string  `json:"result"` // Bien | Mal
	Message *string `json:"message,omitempty"`
}

// SupplierFeedbackResponse notificación registrada.
type SupplierFeedbackResponse struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	SupervisorID int64     `json:"supervisor_id"`
	Result       string    `json:"result"`
	Message      *string   `json:"message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}
