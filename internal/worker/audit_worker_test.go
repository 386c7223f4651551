package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditLogRepo struct {
	entries []*model.AuditLog
	failing bool
}

func (r *stubAuditLogRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if r.failing {
		return assert.AnError
	}
	r.entries = append(r.entries, entry)
	return nil
}

var _ repository.AuditLogRepository = (*stubAuditLogRepo)(nil)

func TestAuditWorkerPersistsEntry(t *testing.T) {
	repo := &stubAuditLogRepo{}
	w := NewAuditWorker(repo)

	userID := "u-1"
	raw, err := json.Marshal(AuditJobPayload{
		Entity:    "product",
		EntityID:  "p-1",
		Action:    "create",
		UserID:    &userID,
		NewValues: json.RawMessage(`{"name":"Cafe"}`),
	})
	require.NoError(t, err)

	w.Process(context.Background(), raw)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "product", entry.Entity)
	assert.Equal(t, "create", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.JSONEq(t, `{"name":"Cafe"}`, string(entry.NewValues))
}

func TestAuditWorkerSkipsIncompletePayload(t *testing.T) {
	repo := &stubAuditLogRepo{}
	w := NewAuditWorker(repo)

	w.Process(context.Background(), json.RawMessage(`{"entity_id":"x"}`))
	assert.Empty(t, repo.entries)
}

func TestAuditWorkerDropsInvalidJSON(t *testing.T) {
	repo := &stubAuditLogRepo{}
	w := NewAuditWorker(repo)

	w.Process(context.Background(), json.RawMessage(`{no es json`))
	assert.Empty(t, repo.entries)
}

func TestProcessJobDispatchesByType(t *testing.T) {
	repo := &stubAuditLogRepo{}
	handlers := map[string]Handler{"audit": NewAuditWorker(repo)}

	payload, err := json.Marshal(AuditJobPayload{Entity: "sale", EntityID: "s-1", Action: "delete"})
	require.NoError(t, err)
	job, err := json.Marshal(Job{Type: "audit", Payload: payload})
	require.NoError(t, err)

	processJob(context.Background(), handlers, QueueAudit, string(job))
	require.Len(t, repo.entries, 1)
	assert.Equal(t, "sale", repo.entries[0].Entity)

	// Unknown job types are dropped, not fatal.
	unknown, err := json.Marshal(Job{Type: "mystery", Payload: payload})
	require.NoError(t, err)
	processJob(context.Background(), handlers, QueueAudit, string(unknown))
	assert.Len(t, repo.entries, 1)
}
