package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EgressService manages cash-outflow records. Egresses are independent of
// sales and carry their own EGR-{yyyyMMdd}-{seq} numbering.
type EgressService interface {
	Create(ctx context.Context, req dto.CreateEgressRequest, userID *uuid.UUID) (*dto.EgressResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error)
	List(ctx context.Context, filter dto.EgressFilter) (*dto.Paginated[dto.EgressResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEgressRequest) (*dto.EgressResponse, error)
	// Complete and Cancel move a PENDING egress to its terminal states.
	Complete(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TotalsByCurrency(ctx context.Context, from, to string) ([]dto.EgressTotal, error)
}

type egressService struct {
	repo repository.EgressRepository
	loc  *time.Location
}

func NewEgressService(repo repository.EgressRepository, loc *time.Location) EgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &egressService{repo: repo, loc: loc}
}

// egressNumberPrefix builds the per-day number prefix, e.g. "EGR-20250901-".
func egressNumberPrefix(t time.Time) string {
	return fmt.Sprintf("EGR-%d%02d%02d-", t.Year(), int(t.Month()), t.Day())
}

func (s *egressService) Create(ctx context.Context, req dto.CreateEgressRequest, userID *uuid.UUID) (*dto.EgressResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apierror.InvalidInput("El monto debe ser mayor a cero")
	}
	currency := req.Currency
	if currency == "" {
		currency = "ARS"
	}

	var e *model.Egress
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		prefix := egressNumberPrefix(time.Now().In(s.loc))
		seq, err := s.repo.NextSequenceForPrefix(tx, prefix)
		if err != nil {
			return apierror.OperationFailed("Error al generar el número de egreso", err)
		}
		e = &model.Egress{
			EgressNumber: fmt.Sprintf("%s%03d", prefix, seq),
			Concept:      req.Concept,
			Amount:       req.Amount,
			Currency:     currency,
			Type:         req.Type,
			Status:       model.EgressPending,
			Notes:        req.Notes,
			AuthorizedBy: req.AuthorizedBy,
			UserID:       userID,
		}
		if err := s.repo.CreateTx(tx, e); err != nil {
			return apierror.OperationFailed("Error al crear el egreso", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return egressToResponse(e), nil
}

func (s *egressService) Get(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error) {
	e, err := s.findEgress(ctx, id)
	if err != nil {
		return nil, err
	}
	return egressToResponse(e), nil
}

func (s *egressService) List(ctx context.Context, filter dto.EgressFilter) (*dto.Paginated[dto.EgressResponse], error) {
	filter.Normalize()
	egresses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar egresos", err)
	}
	data := make([]dto.EgressResponse, 0, len(egresses))
	for i := range egresses {
		data = append(data, *egressToResponse(&egresses[i]))
	}
	return dto.NewPaginated(data, filter.Page, filter.Limit, total), nil
}

func (s *egressService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEgressRequest) (*dto.EgressResponse, error) {
	e, err := s.findEgress(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.EgressPending {
		return nil, apierror.StateConflict("Solo se pueden modificar egresos pendientes")
	}

	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, apierror.InvalidInput("El monto debe ser mayor a cero")
		}
		e.Amount = *req.Amount
	}
	if req.Concept != nil {
		e.Concept = *req.Concept
	}
	if req.Currency != nil {
		e.Currency = *req.Currency
	}
	if req.Type != nil {
		e.Type = *req.Type
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if req.AuthorizedBy != nil {
		e.AuthorizedBy = req.AuthorizedBy
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el egreso", err)
	}
	return egressToResponse(e), nil
}

func (s *egressService) Complete(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error) {
	return s.transition(ctx, id, model.EgressCompleted)
}

func (s *egressService) Cancel(ctx context.Context, id uuid.UUID) (*dto.EgressResponse, error) {
	return s.transition(ctx, id, model.EgressCancelled)
}

func (s *egressService) transition(ctx context.Context, id uuid.UUID, status string) (*dto.EgressResponse, error) {
	e, err := s.findEgress(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != model.EgressPending {
		return nil, apierror.StateConflict(fmt.Sprintf("El egreso ya está %s", e.Status))
	}
	e.Status = status
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el egreso", err)
	}
	return egressToResponse(e), nil
}

func (s *egressService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.findEgress(ctx, id)
	if err != nil {
		return err
	}
	// Completed egresses are money already out the door; they stay on record.
	if e.Status == model.EgressCompleted {
		return apierror.StateConflict("No se puede eliminar un egreso completado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.OperationFailed("Error al eliminar el egreso", err)
	}
	return nil
}

func (s *egressService) TotalsByCurrency(ctx context.Context, from, to string) ([]dto.EgressTotal, error) {
	totals, err := s.repo.TotalsByCurrency(ctx, from, to)
	if err != nil {
		return nil, apierror.OperationFailed("Error al calcular totales de egresos", err)
	}
	return totals, nil
}

func (s *egressService) findEgress(ctx context.Context, id uuid.UUID) (*model.Egress, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Egreso", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el egreso", err)
	}
	return e, nil
}

func egressToResponse(e *model.Egress) *dto.EgressResponse {
	resp := &dto.EgressResponse{
		ID:           e.ID.String(),
		EgressNumber: e.EgressNumber,
		Concept:      e.Concept,
		Amount:       e.Amount,
		Currency:     e.Currency,
		Type:         e.Type,
		Status:       e.Status,
		Notes:        e.Notes,
		AuthorizedBy: e.AuthorizedBy,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
	if e.UserID != nil {
		id := e.UserID.String()
		resp.UserID = &id
	}
	return resp
}
