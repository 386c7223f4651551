package service

import (
	"context"
	"testing"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEgressFixture() (EgressService, *stubEgressRepo) {
	repo := newStubEgressRepo()
	return NewEgressService(repo, time.UTC), repo
}

func TestEgressNumberPrefix(t *testing.T) {
	d := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "EGR-20250901-", egressNumberPrefix(d))
}

func TestEgressCreateNumbering(t *testing.T) {
	svc, _ := newEgressFixture()

	first, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Compra de insumos",
		Amount:  dec("1500"),
		Type:    model.EgressExpense,
	}, nil)
	require.NoError(t, err)

	prefix := egressNumberPrefix(time.Now().UTC())
	assert.Equal(t, prefix+"001", first.EgressNumber)
	assert.Equal(t, model.EgressPending, first.Status)
	assert.Equal(t, "ARS", first.Currency)

	second, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept:  "Retiro de caja",
		Amount:   dec("500"),
		Currency: "USD",
		Type:     model.EgressWithdrawal,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, prefix+"002", second.EgressNumber)
	assert.Equal(t, "USD", second.Currency)
}

func TestEgressCreateRecordsUser(t *testing.T) {
	svc, _ := newEgressFixture()
	userID := uuid.New()

	resp, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Devolución",
		Amount:  dec("200"),
		Type:    model.EgressRefund,
	}, &userID)
	require.NoError(t, err)

	require.NotNil(t, resp.UserID)
	assert.Equal(t, userID.String(), *resp.UserID)
}

func TestEgressCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newEgressFixture()

	_, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Nada",
		Amount:  decimal.Zero,
		Type:    model.EgressOther,
	}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidInput))
}

func TestEgressCompleteIsTerminal(t *testing.T) {
	svc, _ := newEgressFixture()

	created, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Pago proveedor",
		Amount:  dec("3000"),
		Type:    model.EgressExpense,
	}, nil)
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	completed, err := svc.Complete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.EgressCompleted, completed.Status)

	_, err = svc.Cancel(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStateConflict))

	_, err = svc.Complete(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStateConflict))
}

func TestEgressUpdateOnlyWhilePending(t *testing.T) {
	svc, _ := newEgressFixture()

	created, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Alquiler",
		Amount:  dec("90000"),
		Type:    model.EgressExpense,
	}, nil)
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	newAmount := dec("95000")
	updated, err := svc.Update(context.Background(), id, dto.UpdateEgressRequest{Amount: &newAmount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("95000")))

	_, err = svc.Cancel(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), id, dto.UpdateEgressRequest{Amount: &newAmount})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStateConflict))
}

func TestEgressTotalsCountOnlyCompleted(t *testing.T) {
	svc, _ := newEgressFixture()

	mk := func(amount, currency string) uuid.UUID {
		resp, err := svc.Create(context.Background(), dto.CreateEgressRequest{
			Concept:  "Gasto",
			Amount:   dec(amount),
			Currency: currency,
			Type:     model.EgressExpense,
		}, nil)
		require.NoError(t, err)
		return uuid.MustParse(resp.ID)
	}

	a := mk("100", "ARS")
	b := mk("250", "ARS")
	mk("40", "USD") // stays PENDING

	_, err := svc.Complete(context.Background(), a)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), b)
	require.NoError(t, err)

	totals, err := svc.TotalsByCurrency(context.Background(), "", "")
	require.NoError(t, err)

	require.Len(t, totals, 1)
	assert.Equal(t, "ARS", totals[0].Currency)
	assert.True(t, totals[0].Total.Equal(dec("350")), "total %s", totals[0].Total)
}

func TestEgressDeleteRejectsCompleted(t *testing.T) {
	svc, repo := newEgressFixture()

	created, err := svc.Create(context.Background(), dto.CreateEgressRequest{
		Concept: "Pago servicios",
		Amount:  dec("1200"),
		Type:    model.EgressExpense,
	}, nil)
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	_, err = svc.Complete(context.Background(), id)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindStateConflict))
	assert.Len(t, repo.egresses, 1)
}

func TestEgressNotFound(t *testing.T) {
	svc, _ := newEgressFixture()

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
