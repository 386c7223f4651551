package service

import (
	"context"
	"errors"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// restoredNote marks prepaid records recreated when a sale that consumed
// credit via FIFO is cancelled or deleted.
const restoredNote = "Restaurado por cancelación de venta"

// PrepaidService manages the prepaid credit ledger. Consumption never mutates
// history destructively: a partial consumption splits the record, so the sum
// of a client's records is invariant under consumption.
type PrepaidService interface {
	Create(ctx context.Context, clientID uuid.UUID, req dto.CreatePrepaidRequest) (*dto.PrepaidResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PrepaidResponse, error)
	List(ctx context.Context, filter dto.PrepaidFilter) (*dto.Paginated[dto.PrepaidResponse], error)
	ListByClient(ctx context.Context, clientID uuid.UUID, onlyPending bool) ([]dto.PrepaidResponse, error)
	TotalPendingForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
	// UpdateStatus flips one record between PENDING and CONSUMED in place.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.PrepaidResponse, error)

	// Settlement hooks — run inside the caller's transaction.
	// ConsumeByAmountFIFO consumes up to amount from the client's PENDING
	// records oldest-first and returns what was actually consumed. Running out
	// of credit is not an error; the caller settles the rest in cash.
	ConsumeByAmountFIFO(tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	// ConsumeSpecific consumes one record whole, regardless of the sale total.
	ConsumeSpecific(tx *gorm.DB, id uuid.UUID) (decimal.Decimal, error)
	// Restore recreates consumed credit as a fresh PENDING record.
	Restore(tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) error
	// Release flips a specifically-targeted record back to PENDING.
	Release(tx *gorm.DB, id uuid.UUID) error
}

type prepaidService struct {
	repo    repository.PrepaidRepository
	clients repository.ClientRepository
}

func NewPrepaidService(repo repository.PrepaidRepository, clients repository.ClientRepository) PrepaidService {
	return &prepaidService{repo: repo, clients: clients}
}

func (s *prepaidService) Create(ctx context.Context, clientID uuid.UUID, req dto.CreatePrepaidRequest) (*dto.PrepaidResponse, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Cliente", clientID.String())
		}
		return nil, apierror.OperationFailed("Error al crear el prepaid", err)
	}

	p := &model.Prepaid{
		ClientID: clientID,
		Amount:   req.Amount,
		Status:   model.PrepaidPending,
		Notes:    req.Notes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.OperationFailed("Error al crear el prepaid", err)
	}
	return prepaidToResponse(p), nil
}

func (s *prepaidService) Get(ctx context.Context, id uuid.UUID) (*dto.PrepaidResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Prepaid", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el prepaid", err)
	}
	return prepaidToResponse(p), nil
}

func (s *prepaidService) List(ctx context.Context, filter dto.PrepaidFilter) (*dto.Paginated[dto.PrepaidResponse], error) {
	filter.Normalize()
	prepaids, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar prepaids", err)
	}
	data := make([]dto.PrepaidResponse, 0, len(prepaids))
	for i := range prepaids {
		data = append(data, *prepaidToResponse(&prepaids[i]))
	}
	return dto.NewPaginated(data, filter.Page, filter.Limit, total), nil
}

func (s *prepaidService) ListByClient(ctx context.Context, clientID uuid.UUID, onlyPending bool) ([]dto.PrepaidResponse, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Cliente", clientID.String())
		}
		return nil, apierror.OperationFailed("Error al listar prepaids", err)
	}
	prepaids, err := s.repo.ListByClient(ctx, clientID, onlyPending)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar prepaids", err)
	}
	data := make([]dto.PrepaidResponse, 0, len(prepaids))
	for i := range prepaids {
		data = append(data, *prepaidToResponse(&prepaids[i]))
	}
	return data, nil
}

func (s *prepaidService) TotalPendingForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.repo.SumPendingByClient(ctx, clientID)
	if err != nil {
		return decimal.Zero, apierror.OperationFailed("Error al calcular el saldo prepaid", err)
	}
	return total, nil
}

func (s *prepaidService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.PrepaidResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Prepaid", id.String())
		}
		return nil, apierror.OperationFailed("Error al actualizar el prepaid", err)
	}
	if p.Status == status {
		return prepaidToResponse(p), nil
	}

	var consumedAt *time.Time
	if status == model.PrepaidConsumed {
		now := time.Now()
		consumedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, consumedAt); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el prepaid", err)
	}
	p.Status = status
	p.ConsumedAt = consumedAt
	return prepaidToResponse(p), nil
}

func (s *prepaidService) ConsumeByAmountFIFO(tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	pending, err := s.repo.ListPendingByClientForUpdate(tx, clientID)
	if err != nil {
		return decimal.Zero, apierror.OperationFailed("Error al consumir prepaids", err)
	}

	now := time.Now()
	remaining := amount
	consumed := decimal.Zero

	for i := range pending {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		p := &pending[i]

		if p.Amount.LessThanOrEqual(remaining) {
			// Whole record fits: flip it to CONSUMED.
			if err := s.repo.UpdateStatusTx(tx, p.ID, model.PrepaidConsumed, &now); err != nil {
				return decimal.Zero, apierror.OperationFailed("Error al consumir prepaids", err)
			}
			consumed = consumed.Add(p.Amount)
			remaining = remaining.Sub(p.Amount)
			continue
		}

		// Split: shrink the pending record and record the consumed portion
		// separately, keeping the client's ledger sum unchanged.
		if err := s.repo.UpdateAmountTx(tx, p.ID, p.Amount.Sub(remaining)); err != nil {
			return decimal.Zero, apierror.OperationFailed("Error al consumir prepaids", err)
		}
		split := &model.Prepaid{
			ClientID:   clientID,
			Amount:     remaining,
			Status:     model.PrepaidConsumed,
			ConsumedAt: &now,
			Notes:      p.Notes,
		}
		if err := s.repo.CreateTx(tx, split); err != nil {
			return decimal.Zero, apierror.OperationFailed("Error al consumir prepaids", err)
		}
		consumed = consumed.Add(remaining)
		remaining = decimal.Zero
	}
	return consumed, nil
}

func (s *prepaidService) ConsumeSpecific(tx *gorm.DB, id uuid.UUID) (decimal.Decimal, error) {
	p, err := s.repo.FindByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apierror.NotFound("Prepaid", id.String())
		}
		return decimal.Zero, apierror.OperationFailed("Error al consumir el prepaid", err)
	}
	if p.Status != model.PrepaidPending {
		return decimal.Zero, apierror.StateConflict("El prepaid ya fue consumido")
	}

	now := time.Now()
	if err := s.repo.UpdateStatusTx(tx, id, model.PrepaidConsumed, &now); err != nil {
		return decimal.Zero, apierror.OperationFailed("Error al consumir el prepaid", err)
	}
	return p.Amount, nil
}

func (s *prepaidService) Restore(tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	note := restoredNote
	p := &model.Prepaid{
		ClientID: clientID,
		Amount:   amount,
		Status:   model.PrepaidPending,
		Notes:    &note,
	}
	if err := s.repo.CreateTx(tx, p); err != nil {
		return apierror.OperationFailed("Error al restaurar el prepaid", err)
	}
	return nil
}

func (s *prepaidService) Release(tx *gorm.DB, id uuid.UUID) error {
	if err := s.repo.UpdateStatusTx(tx, id, model.PrepaidPending, nil); err != nil {
		return apierror.OperationFailed("Error al liberar el prepaid", err)
	}
	return nil
}

func prepaidToResponse(p *model.Prepaid) *dto.PrepaidResponse {
	resp := &dto.PrepaidResponse{
		ID:        p.ID.String(),
		ClientID:  p.ClientID.String(),
		Amount:    p.Amount,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.Client != nil {
		resp.ClientName = p.Client.FullName
	}
	if p.ConsumedAt != nil {
		ts := p.ConsumedAt.Format(time.RFC3339)
		resp.ConsumedAt = &ts
	}
	return resp
}
