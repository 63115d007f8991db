package dto

type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}
