package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Egress statuses. COMPLETED and CANCELLED are terminal.
const (
	EgressPending   = "PENDING"
	EgressCompleted = "COMPLETED"
	EgressCancelled = "CANCELLED"
)

// Egress types.
const (
	EgressWithdrawal = "WITHDRAWAL"
	EgressExpense    = "EXPENSE"
	EgressRefund     = "REFUND"
	EgressTransfer   = "TRANSFER"
	EgressOther      = "OTHER"
)

// Egress is an independent cash-outflow record.
type Egress struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// EgressNumber is EGR-{yyyyMMdd}-{seq}, seq zero-padded to 3 digits.
	EgressNumber string          `gorm:"uniqueIndex;not null"`
	Concept      string          `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency     string          `gorm:"not null;default:'ARS'"`
	Type         string          `gorm:"index;not null"`
	Status       string          `gorm:"index;not null;default:'PENDING'"`
	Notes        *string
	AuthorizedBy *string
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}
