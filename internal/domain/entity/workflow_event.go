package entity

import "time"

// Tipos de evento publicados tras confirmar cada transición.
const (
	EventRequestSent       = "solicitud.enviada_proveedores"
	EventQuotationAwarded  = "cotizacion.adjudicada"
	EventOrderIssued       = "orden.emitida"
	EventOrderDelivered    = "orden.entregada"
	EventInventoryReceived = "inventario.entrada_compra"
)

// WorkflowEvent evento de dominio para integraciones externas.
type WorkflowEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	EntityID   int64          `json:"entity_id"`
	ActorID    int64          `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}
