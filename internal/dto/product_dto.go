package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name          string          `json:"name"          validate:"required,max=120"`
	Barcode       string          `json:"barcode"       validate:"required,max=64"`
	Category      string          `json:"category"      validate:"required,max=64"`
	Price         decimal.Decimal `json:"price"         validate:"required,gt=0"`
	CostPrice     decimal.Decimal `json:"costPrice"     validate:"required,gt=0"`
	Stock         int             `json:"stock"         validate:"min=0"`
	UnitOfMeasure string          `json:"unitOfMeasure" validate:"omitempty,max=32"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"          validate:"omitempty,max=120"`
	Barcode       *string          `json:"barcode"       validate:"omitempty,max=64"`
	Category      *string          `json:"category"      validate:"omitempty,max=64"`
	Price         *decimal.Decimal `json:"price"         validate:"omitempty,gt=0"`
	CostPrice     *decimal.Decimal `json:"costPrice"     validate:"omitempty,gt=0"`
	UnitOfMeasure *string          `json:"unitOfMeasure" validate:"omitempty,max=32"`
}

// AdjustStockRequest increments or decrements stock by quantity.
type AdjustStockRequest struct {
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
	Direction string `json:"direction" validate:"required,oneof=add subtract"`
}

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Barcode       string          `json:"barcode"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	ProfitMargin  decimal.Decimal `json:"profitMargin"`
	Stock         int             `json:"stock"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// PriceCheckResponse is served by the public barcode price endpoint.
type PriceCheckResponse struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}
