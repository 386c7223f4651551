package worker

// audit_worker.go
// Persists audit trail entries enqueued after successful mutations. A failed
// insert is logged and dropped; the mutation that produced it already
// committed.

import (
	"context"
	"encoding/json"

	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// AuditJobPayload is the job envelope sent to QueueAudit.
type AuditJobPayload struct {
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Action    string          `json:"action"`
	UserID    *string         `json:"user_id,omitempty"`
	UserEmail *string         `json:"user_email,omitempty"`
	IPAddress *string         `json:"ip_address,omitempty"`
	NewValues json.RawMessage `json:"new_values,omitempty"`
}

// AuditWorker writes audit log rows from QueueAudit.
type AuditWorker struct {
	repo repository.AuditLogRepository
}

func NewAuditWorker(repo repository.AuditLogRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AuditJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return
	}
	if payload.Entity == "" || payload.Action == "" {
		log.Warn().Msg("audit_worker: missing entity or action — skipping")
		return
	}

	entry := &model.AuditLog{
		Entity:    payload.Entity,
		EntityID:  payload.EntityID,
		Action:    payload.Action,
		UserID:    payload.UserID,
		UserEmail: payload.UserEmail,
		IPAddress: payload.IPAddress,
		NewValues: payload.NewValues,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("entity", payload.Entity).Str("action", payload.Action).
			Msg("audit_worker: failed to persist entry")
		return
	}
	log.Debug().Str("entity", payload.Entity).Str("action", payload.Action).Msg("audit_worker: entry persisted")
}
