package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Prepaid statuses.
const (
	PrepaidPending  = "PENDING"
	PrepaidConsumed = "CONSUMED"
)

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName  string    `gorm:"index;not null"`
	Phone     *string
	Email     *string `gorm:"uniqueIndex"`
	CUIT      *string `gorm:"column:cuit;uniqueIndex"`
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Prepaids []Prepaid `gorm:"foreignKey:ClientID"`
}

// Prepaid is a unit of prepaid credit owned by a client. A PENDING record may
// be consumed whole, or split: its amount is reduced in place and a new
// CONSUMED record is created carrying exactly the consumed portion, so the
// sum over the client's records never changes on consumption.
type Prepaid struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"not null;default:'PENDING'"`
	ConsumedAt *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Client *Client `gorm:"foreignKey:ClientID"`
}
