package service

import (
	"context"
	"testing"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prepaidFixture struct {
	svc     PrepaidService
	repo    *stubPrepaidRepo
	clients *stubClientRepo
}

func newPrepaidFixture() *prepaidFixture {
	repo := newStubPrepaidRepo()
	clients := newStubClientRepo()
	return &prepaidFixture{svc: NewPrepaidService(repo, clients), repo: repo, clients: clients}
}

func (f *prepaidFixture) ledgerSum() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range f.repo.prepaids {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func TestPrepaidCreateRequiresClient(t *testing.T) {
	f := newPrepaidFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreatePrepaidRequest{Amount: dec("50")})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestPrepaidCreate(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Ana Diaz"})

	resp, err := f.svc.Create(context.Background(), client.ID, dto.CreatePrepaidRequest{Amount: dec("150.50")})
	require.NoError(t, err)

	assert.Equal(t, model.PrepaidPending, resp.Status)
	assert.True(t, resp.Amount.Equal(dec("150.50")))
	assert.Equal(t, client.ID.String(), resp.ClientID)
}

func TestConsumeByAmountFIFOSplitsRecord(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Luis Paz"})
	rec := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("100"), Status: model.PrepaidPending})

	consumed, err := f.svc.ConsumeByAmountFIFO(nil, client.ID, dec("40"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("40")))

	// The pending record shrinks in place; the consumed portion becomes a new
	// CONSUMED record, keeping the ledger sum unchanged.
	assert.True(t, f.repo.prepaids[rec.ID].Amount.Equal(dec("60")))
	assert.Equal(t, model.PrepaidPending, f.repo.prepaids[rec.ID].Status)
	assert.Len(t, f.repo.prepaids, 2)
	assert.True(t, f.ledgerSum().Equal(dec("100")), "ledger %s", f.ledgerSum())

	for id, p := range f.repo.prepaids {
		if id == rec.ID {
			continue
		}
		assert.Equal(t, model.PrepaidConsumed, p.Status)
		assert.True(t, p.Amount.Equal(dec("40")))
		assert.NotNil(t, p.ConsumedAt)
	}
}

func TestConsumeByAmountFIFOOldestFirst(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Mara Soto"})
	older := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("10"), Status: model.PrepaidPending})
	newer := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("50"), Status: model.PrepaidPending})

	consumed, err := f.svc.ConsumeByAmountFIFO(nil, client.ID, dec("30"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("30")))

	// Older record consumed whole, the newer one split.
	assert.Equal(t, model.PrepaidConsumed, f.repo.prepaids[older.ID].Status)
	assert.Equal(t, model.PrepaidPending, f.repo.prepaids[newer.ID].Status)
	assert.True(t, f.repo.prepaids[newer.ID].Amount.Equal(dec("30")))
	assert.True(t, f.ledgerSum().Equal(dec("60")))
}

func TestConsumeByAmountFIFORunsOutWithoutError(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Ivo Roca"})
	f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("25"), Status: model.PrepaidPending})

	consumed, err := f.svc.ConsumeByAmountFIFO(nil, client.ID, dec("100"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("25")))

	pending, err := f.repo.SumPendingByClient(context.Background(), client.ID)
	require.NoError(t, err)
	assert.True(t, pending.Equal(decimal.Zero))
}

func TestConsumeByAmountFIFOZeroAmountIsNoOp(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Rita Luna"})
	f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("25"), Status: model.PrepaidPending})

	consumed, err := f.svc.ConsumeByAmountFIFO(nil, client.ID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, consumed.Equal(decimal.Zero))
	assert.Len(t, f.repo.prepaids, 1)
}

func TestConsumeSpecificWholeRecord(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Elsa Gil"})
	rec := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("80"), Status: model.PrepaidPending})

	consumed, err := f.svc.ConsumeSpecific(nil, rec.ID)
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("80")))
	assert.Equal(t, model.PrepaidConsumed, f.repo.prepaids[rec.ID].Status)
	assert.NotNil(t, f.repo.prepaids[rec.ID].ConsumedAt)

	// All-or-nothing: an already consumed record cannot be consumed again.
	_, err = f.svc.ConsumeSpecific(nil, rec.ID)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStateConflict))
}

func TestConsumeSpecificNotFound(t *testing.T) {
	f := newPrepaidFixture()

	_, err := f.svc.ConsumeSpecific(nil, uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRestoreCreatesPendingRecord(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Teo Vega"})

	require.NoError(t, f.svc.Restore(nil, client.ID, dec("45")))

	require.Len(t, f.repo.prepaids, 1)
	for _, p := range f.repo.prepaids {
		assert.Equal(t, model.PrepaidPending, p.Status)
		assert.True(t, p.Amount.Equal(dec("45")))
		require.NotNil(t, p.Notes)
		assert.Equal(t, restoredNote, *p.Notes)
	}
}

func TestRestoreZeroAmountIsNoOp(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Nora Paz"})

	require.NoError(t, f.svc.Restore(nil, client.ID, decimal.Zero))
	assert.Empty(t, f.repo.prepaids)
}

func TestReleaseFlipsBackToPending(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Gema Rey"})
	now := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("60"), Status: model.PrepaidConsumed})

	require.NoError(t, f.svc.Release(nil, now.ID))

	assert.Equal(t, model.PrepaidPending, f.repo.prepaids[now.ID].Status)
	assert.Nil(t, f.repo.prepaids[now.ID].ConsumedAt)
	assert.Len(t, f.repo.prepaids, 1)
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	f := newPrepaidFixture()
	client := f.clients.add(&model.Client{FullName: "Leo Soler"})
	rec := f.repo.add(&model.Prepaid{ClientID: client.ID, Amount: dec("30"), Status: model.PrepaidPending})

	resp, err := f.svc.UpdateStatus(context.Background(), rec.ID, model.PrepaidPending)
	require.NoError(t, err)
	assert.Equal(t, model.PrepaidPending, resp.Status)
	assert.Nil(t, resp.ConsumedAt)

	resp, err = f.svc.UpdateStatus(context.Background(), rec.ID, model.PrepaidConsumed)
	require.NoError(t, err)
	assert.Equal(t, model.PrepaidConsumed, resp.Status)
	assert.NotNil(t, resp.ConsumedAt)
}
