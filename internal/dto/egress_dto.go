package dto

import "github.com/shopspring/decimal"

type CreateEgressRequest struct {
	Concept      string          `json:"concept"      validate:"required,max=200"`
	Amount       decimal.Decimal `json:"amount"       validate:"required"`
	Currency     string          `json:"currency"     validate:"omitempty,len=3"`
	Type         string          `json:"type"         validate:"required,oneof=WITHDRAWAL EXPENSE REFUND TRANSFER OTHER"`
	Notes        *string         `json:"notes"        validate:"omitempty,max=500"`
	AuthorizedBy *string         `json:"authorizedBy" validate:"omitempty,max=100"`
}

type UpdateEgressRequest struct {
	Concept      *string          `json:"concept"      validate:"omitempty,max=200"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     *string          `json:"currency"     validate:"omitempty,len=3"`
	Type         *string          `json:"type"         validate:"omitempty,oneof=WITHDRAWAL EXPENSE REFUND TRANSFER OTHER"`
	Notes        *string          `json:"notes"        validate:"omitempty,max=500"`
	AuthorizedBy *string          `json:"authorizedBy" validate:"omitempty,max=100"`
}

// EgressFilter extends the pagination contract with egress-specific filters.
// Search matches concept, notes and authorizedBy.
type EgressFilter struct {
	PageQuery
	Status   string `form:"status"   validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Type     string `form:"type"     validate:"omitempty,oneof=WITHDRAWAL EXPENSE REFUND TRANSFER OTHER"`
	Currency string `form:"currency" validate:"omitempty,len=3"`
}

type EgressResponse struct {
	ID           string          `json:"id"`
	EgressNumber string          `json:"egressNumber"`
	Concept      string          `json:"concept"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Notes        *string         `json:"notes,omitempty"`
	AuthorizedBy *string         `json:"authorizedBy,omitempty"`
	UserID       *string         `json:"userId,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

// EgressTotal aggregates COMPLETED egresses by currency over a period.
type EgressTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}
