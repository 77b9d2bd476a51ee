package procurement

import (
	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

func toRequestResponse(v *entity.RequestView) *dto.PurchaseRequestResponse {
	return &dto.PurchaseRequestResponse{
		ID:              v.ID,
		RequesterID:     v.RequesterID,
		RequesterName:   v.RequesterName,
		ProductID:       v.ProductID,
		ProductName:     v.ProductName,
		Quantity:        v.Quantity,
		Reason:          v.Reason,
		State:           string(v.State),
		CreatedAt:       v.CreatedAt,
		ReviewerID:      v.ReviewerID,
		ReviewerComment: v.ReviewerComment,
		ReviewedAt:      v.ReviewedAt,
	}
}

func toQuotationResponse(q *entity.Quotation) *dto.QuotationResponse {
	return &dto.QuotationResponse{
		ID:              q.ID,
		RequestID:       q.RequestID,
		SupplierID:      q.SupplierID,
		Price:           q.Price,
		DeliveryTime:    q.DeliveryTime,
		Terms:           q.Terms,
		State:           string(q.State),
		RejectionReason: q.RejectionReason,
		AwardedBy:       q.AwardedBy,
		AwardedAt:       q.AwardedAt,
		CreatedAt:       q.CreatedAt,
	}
}

func toQuotationViewResponse(v *entity.QuotationView) dto.QuotationResponse {
	r := toQuotationResponse(&v.Quotation)
	r.SupplierName = v.SupplierName
	r.ProductID = v.ProductID
	r.ProductName = v.ProductName
	r.RequesterID = v.RequesterID
	r.RequesterName = v.RequesterName
	r.Quantity = v.Quantity
	return *r
}

func toDispatchResponse(ev entity.DispatchEvent) dto.DispatchEventResponse {
	return dto.DispatchEventResponse{
		ID:         ev.ID,
		Status:     string(ev.Status),
		OccurredAt: ev.OccurredAt,
		Notes:      ev.Notes,
	}
}

func toOrderResponse(v *entity.OrderView) *dto.OrderResponse {
	r := &dto.OrderResponse{
		ID:                   v.ID,
		QuotationID:          v.QuotationID,
		RequestID:            v.RequestID,
		SupplierID:           v.SupplierID,
		SupplierName:         v.SupplierName,
		RequesterID:          v.RequesterID,
		RequesterName:        v.RequesterName,
		ProductID:            v.ProductID,
		ProductName:          v.ProductName,
		Quantity:             v.Quantity,
		Price:                v.Price,
		Total:                v.Total,
		State:                string(v.State),
		CreatedAt:            v.CreatedAt,
		SupervisorConformity: string(v.SupervisorConformity),
		SupervisorID:         v.SupervisorID,
		SupervisorComment:    v.SupervisorComment,
		EmployeeAcceptance:   string(v.EmployeeAcceptance),
		EmployeeID:           v.EmployeeID,
		EmployeeComment:      v.EmployeeComment,
	}
	for _, ev := range v.Tracking {
		r.Tracking = append(r.Tracking, toDispatchResponse(ev))
	}
	return r
}

func toFeedbackResponse(fb *entity.SupplierFeedback) dto.SupplierFeedbackResponse {
	return dto.SupplierFeedbackResponse{
		ID:           fb.ID,
		OrderID:      fb.OrderID,
		SupplierID:   fb.SupplierID,
		SupplierName: fb.SupplierName,
		SupervisorID: fb.SupervisorID,
		Result:       string(fb.Result),
		Message:      fb.Message,
		SentAt:       fb.SentAt,
	}
}
