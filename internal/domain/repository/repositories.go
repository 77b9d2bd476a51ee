package repository

// Repositories agrupa los repositorios atados a una misma transacción (o al pool).
type Repositories struct {
	Requests   PurchaseRequestRepository
	Links      SupplierLinkRepository
	Quotations QuotationRepository
	Orders     PurchaseOrderRepository
	Dispatch   DispatchEventRepository
	Inventory  InventoryRepository
	Movements  InventoryMovementRepository
	Receipts   ReceiptRepository
	Feedback   SupplierFeedbackRepository
}
