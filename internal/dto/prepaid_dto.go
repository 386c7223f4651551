package dto

import "github.com/shopspring/decimal"

type CreatePrepaidRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Notes  *string         `json:"notes"  validate:"omitempty,max=500"`
}

type UpdatePrepaidStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONSUMED"`
}

// PrepaidFilter extends the pagination contract with a status filter.
// Search matches the owning client's name or email.
type PrepaidFilter struct {
	PageQuery
	Status string `form:"status" validate:"omitempty,oneof=PENDING CONSUMED"`
}

type PrepaidResponse struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"clientId"`
	ClientName string          `json:"clientName,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	ConsumedAt *string         `json:"consumedAt,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	CreatedAt  string          `json:"createdAt"`
}
