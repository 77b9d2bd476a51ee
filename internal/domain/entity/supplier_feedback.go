package entity

import (
	"fmt"
	"time"
)

// FeedbackResult calificación del jefe sobre la entrega del proveedor.
type FeedbackResult string

const (
	FeedbackBien FeedbackResult = "Bien"
	FeedbackMal  FeedbackResult = "Mal"
)

// ParseFeedbackResult acepta solo Bien o Mal.
func ParseFeedbackResult(s string) (FeedbackResult, error) {
	switch FeedbackResult(s) {
	case FeedbackBien, FeedbackMal:
		return FeedbackResult(s), nil
	}
	return "", fmt.Errorf("resultado inválido %q (Bien/Mal)", s)
}

// SupplierFeedback notificación al proveedor sobre una orden entregada.
type SupplierFeedback struct {
	ID           int64
	OrderID      int64
	SupplierID   int64
	SupplierName string
	SupervisorID int64
	Result       FeedbackResult
	Message      *string
	SentAt       time.Time
}
