package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,min=1"`
	// UnitPrice is charged as supplied — it may undercut the catalog price to
	// apply a manual per-line discount.
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"min=0"`
}

type CreateSaleRequest struct {
	ClientID      *string           `json:"clientId"      validate:"omitempty,uuid"`
	CustomerName  *string           `json:"customerName"  validate:"omitempty,max=100"`
	CustomerEmail *string           `json:"customerEmail" validate:"omitempty,email,max=255"`
	CustomerPhone *string           `json:"customerPhone" validate:"omitempty,max=20"`
	Items         []SaleItemRequest `json:"items"         validate:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=CASH CARD TRANSFER"`
	Notes         *string           `json:"notes"         validate:"omitempty,max=500"`
	// Tax and Discount are percentages of the subtotal (0–100), applied
	// independently, not compounded.
	Tax      decimal.Decimal `json:"tax"      validate:"min=0,max=100"`
	Discount decimal.Decimal `json:"discount" validate:"min=0,max=100"`
	// PrepaidUsed is a currency amount to settle against prepaid credit.
	// Ignored when automatic or targeted consumption applies.
	PrepaidUsed decimal.Decimal `json:"prepaidUsed" validate:"min=0"`
	// PrepaidID + ConsumedPrepaid target one specific prepaid record, which is
	// consumed whole.
	PrepaidID       *string `json:"prepaidId" validate:"omitempty,uuid"`
	ConsumedPrepaid bool    `json:"consumedPrepaid"`
}

type UpdateSaleRequest struct {
	CustomerName  *string           `json:"customerName"  validate:"omitempty,max=100"`
	CustomerEmail *string           `json:"customerEmail" validate:"omitempty,email,max=255"`
	CustomerPhone *string           `json:"customerPhone" validate:"omitempty,max=20"`
	Items         []SaleItemRequest `json:"items"         validate:"omitempty,min=1,dive"`
	PaymentMethod *string           `json:"paymentMethod" validate:"omitempty,oneof=CASH CARD TRANSFER"`
	Status        *string           `json:"status"        validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Notes         *string           `json:"notes"         validate:"omitempty,max=500"`
	Tax           *decimal.Decimal  `json:"tax"           validate:"omitempty,min=0,max=100"`
	Discount      *decimal.Decimal  `json:"discount"      validate:"omitempty,min=0,max=100"`
}

type SaleItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	SaleNumber    string             `json:"saleNumber"`
	ClientID      *string            `json:"clientId,omitempty"`
	CustomerName  *string            `json:"customerName,omitempty"`
	CustomerEmail *string            `json:"customerEmail,omitempty"`
	CustomerPhone *string            `json:"customerPhone,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	PrepaidUsed   decimal.Decimal    `json:"prepaidUsed"`
	PrepaidID     *string            `json:"prepaidId,omitempty"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        string             `json:"status"`
	Notes         *string            `json:"notes,omitempty"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
}

type DailySalesQuery struct {
	Date     string `form:"date"     validate:"omitempty,datetime=2006-01-02"`
	Timezone string `form:"timezone" validate:"omitempty,timezone"`
}

type DailySaleRow struct {
	ID            string          `json:"id"`
	SaleNumber    string          `json:"saleNumber"`
	CustomerName  *string         `json:"customerName,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"createdAt"`
}

type DailySalesSummary struct {
	TotalSales           int                        `json:"totalSales"`
	TotalAmount          decimal.Decimal            `json:"totalAmount"`
	TotalByPaymentMethod map[string]decimal.Decimal `json:"totalByPaymentMethod"`
	TotalByStatus        map[string]int             `json:"totalByStatus"`
}

type DailySalesResponse struct {
	Date     string            `json:"date"`
	Timezone string            `json:"timezone"`
	Sales    []DailySaleRow    `json:"sales"`
	Summary  DailySalesSummary `json:"summary"`
}
