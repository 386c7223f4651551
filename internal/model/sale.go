package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale statuses.
const (
	SalePending   = "PENDING"
	SaleCompleted = "COMPLETED"
	SaleCancelled = "CANCELLED"
)

// Payment methods.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

type Sale struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// SaleNumber is V-{year}-{MMdd}-{seq}, seq zero-padded to 3 digits and
	// sequential per calendar day.
	SaleNumber    string     `gorm:"uniqueIndex;not null"`
	ClientID      *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Tax and Discount are percentages of the subtotal, applied independently.
	Tax      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Discount decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	// PrepaidUsed is the currency amount settled against prepaid credit.
	// PrepaidID is set only when a specific prepaid was targeted.
	PrepaidUsed   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrepaidID     *uuid.UUID      `gorm:"type:uuid"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"not null"`
	Status        string          `gorm:"index;not null;default:'PENDING'"`
	Notes         *string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Items  []SaleItem `gorm:"foreignKey:SaleID"`
	Client *Client    `gorm:"foreignKey:ClientID"`
}

// SaleItem snapshots the product name and the unit price charged at sale
// time. UnitPrice is caller-supplied and may differ from the catalog price
// (per-line manual discounting).
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
