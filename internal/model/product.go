package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product stock-derived statuses.
const (
	ProductActive     = "active"
	ProductInactive   = "inactive"
	ProductOutOfStock = "out_of_stock"
)

// LowStockThreshold is the stock level below which a product appears in the
// low-stock report.
const LowStockThreshold = 10

type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"index;not null"`
	Barcode  string    `gorm:"uniqueIndex;not null"`
	Category string    `gorm:"index;not null"`
	// Price is the sale price; CostPrice the acquisition cost. ProfitMargin is
	// derived: (Price - CostPrice) / CostPrice * 100.
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProfitMargin  decimal.Decimal `gorm:"type:decimal(7,2)"`
	Stock         int             `gorm:"not null;default:0"`
	UnitOfMeasure string          `gorm:"not null;default:'unidad'"`
	Status        string          `gorm:"not null;default:'active'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// DerivedStatus recomputes the stock-derived status after a stock mutation.
// Zero stock forces out_of_stock; any positive stock re-activates the product.
func DerivedStatus(stock int) string {
	if stock == 0 {
		return ProductOutOfStock
	}
	return ProductActive
}
