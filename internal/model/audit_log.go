package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a successful mutation: which entity, which action, who did
// it and the resulting data. Rows are written asynchronously by the audit
// worker; a failed write never affects the mutation that produced it.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Entity    string    `gorm:"index;not null"`
	EntityID  string    `gorm:"index;not null"`
	Action    string    `gorm:"not null"`
	UserID    *string
	UserEmail *string
	IPAddress *string
	// NewValues holds the JSON-encoded result of the mutation.
	NewValues []byte    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
}
