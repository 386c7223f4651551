package dto

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	CUIT     *string `json:"cuit"     validate:"omitempty,max=20"`
	Notes    *string `json:"notes"    validate:"omitempty,max=500"`
	// Prepaids optionally seeds the client with initial credit records.
	Prepaids []CreatePrepaidRequest `json:"prepaids" validate:"omitempty,dive"`
}

type UpdateClientRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=120"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	CUIT     *string `json:"cuit"     validate:"omitempty,max=20"`
	Notes    *string `json:"notes"    validate:"omitempty,max=500"`
}

type ClientResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	CUIT     *string `json:"cuit,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	// PrepaidBalance is the sum of the client's PENDING prepaid amounts.
	PrepaidBalance decimal.Decimal   `json:"prepaidBalance"`
	Prepaids       []PrepaidResponse `json:"prepaids,omitempty"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
}
