package dto

type FinalizeBillRequest struct {
	PaymentMethod string `json:"payment_method"`
}
