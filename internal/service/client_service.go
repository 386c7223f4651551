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

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.ClientResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	// Delete soft-deletes the client and cascades to its prepaid records.
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	repo     repository.ClientRepository
	prepaids repository.PrepaidRepository
}

func NewClientService(repo repository.ClientRepository, prepaids repository.PrepaidRepository) ClientService {
	return &clientService{repo: repo, prepaids: prepaids}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if req.Email != nil {
		exists, err := s.repo.ExistsEmail(ctx, *req.Email, nil)
		if err != nil {
			return nil, apierror.OperationFailed("Error al crear el cliente", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un cliente con el email %s", *req.Email))
		}
	}
	if req.CUIT != nil {
		exists, err := s.repo.ExistsCUIT(ctx, *req.CUIT, nil)
		if err != nil {
			return nil, apierror.OperationFailed("Error al crear el cliente", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un cliente con el CUIT %s", *req.CUIT))
		}
	}

	c := &model.Client{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		CUIT:     req.CUIT,
		Notes:    req.Notes,
	}
	for _, p := range req.Prepaids {
		c.Prepaids = append(c.Prepaids, model.Prepaid{
			Amount: p.Amount,
			Status: model.PrepaidPending,
			Notes:  p.Notes,
		})
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.OperationFailed("Error al crear el cliente", err)
	}
	return s.toResponse(ctx, c)
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	prepaids, err := s.prepaids.ListByClient(ctx, id, false)
	if err != nil {
		return nil, apierror.OperationFailed("Error al buscar el cliente", err)
	}
	c.Prepaids = prepaids
	return s.toResponse(ctx, c)
}

func (s *clientService) List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.ClientResponse], error) {
	q.Normalize()
	clients, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar clientes", err)
	}
	data := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		resp, err := s.toResponse(ctx, &clients[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}
	return dto.NewPaginated(data, q.Page, q.Limit, total), nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && (c.Email == nil || *req.Email != *c.Email) {
		exists, err := s.repo.ExistsEmail(ctx, *req.Email, &id)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el cliente", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un cliente con el email %s", *req.Email))
		}
		c.Email = req.Email
	}
	if req.CUIT != nil && (c.CUIT == nil || *req.CUIT != *c.CUIT) {
		exists, err := s.repo.ExistsCUIT(ctx, *req.CUIT, &id)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el cliente", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un cliente con el CUIT %s", *req.CUIT))
		}
		c.CUIT = req.CUIT
	}
	if req.FullName != nil {
		c.FullName = *req.FullName
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el cliente", err)
	}
	return s.toResponse(ctx, c)
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findClient(ctx, id); err != nil {
		return err
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.prepaids.SoftDeleteByClientTx(tx, id); err != nil {
			return apierror.OperationFailed("Error al eliminar el cliente", err)
		}
		if err := s.repo.SoftDeleteTx(tx, id); err != nil {
			return apierror.OperationFailed("Error al eliminar el cliente", err)
		}
		return nil
	})
}

func (s *clientService) findClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Cliente", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el cliente", err)
	}
	return c, nil
}

func (s *clientService) toResponse(ctx context.Context, c *model.Client) (*dto.ClientResponse, error) {
	balance := decimal.Zero
	if len(c.Prepaids) > 0 {
		for i := range c.Prepaids {
			if c.Prepaids[i].Status == model.PrepaidPending {
				balance = balance.Add(c.Prepaids[i].Amount)
			}
		}
	} else {
		sum, err := s.prepaids.SumPendingByClient(ctx, c.ID)
		if err != nil {
			return nil, apierror.OperationFailed("Error al calcular el saldo prepaid", err)
		}
		balance = sum
	}

	resp := &dto.ClientResponse{
		ID:             c.ID.String(),
		FullName:       c.FullName,
		Phone:          c.Phone,
		Email:          c.Email,
		CUIT:           c.CUIT,
		Notes:          c.Notes,
		PrepaidBalance: balance,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
	for i := range c.Prepaids {
		resp.Prepaids = append(resp.Prepaids, *prepaidToResponse(&c.Prepaids[i]))
	}
	return resp, nil
}
