package domain

// Textos de conflicto compartidos entre los casos de uso y los adaptadores de persistencia
// (el mismo conflicto puede detectarse antes del insert o por la constraint).
const (
	MsgNotSentToSupplier  = "la solicitud no fue enviada a este proveedor"
	MsgAlreadyQuoted      = "este proveedor ya registró cotización"
	MsgAlreadyAwarded     = "la cotización ya fue adjudicada"
	MsgSiblingAwarded     = "la solicitud ya tiene una cotización adjudicada"
	MsgOrderExists        = "ya existe una orden para esta cotización"
	MsgNotDelivered       = "la orden aún no está Entregado"
	MsgSupervisorRequired = "se requiere primero la conformidad del jefe"
	MsgAlreadyAccepted    = "la orden ya fue aceptada por el empleado"
	MsgReceiptExists      = "la orden ya tiene una recepción registrada"
	MsgConcurrentUpdate   = "la solicitud cambió de estado concurrentemente"
)
