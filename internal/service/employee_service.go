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
	"gorm.io/gorm"
)

type EmployeeService interface {
	Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.EmployeeResponse, error)
	List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.EmployeeResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	exists, err := s.repo.ExistsEmail(ctx, req.Email, nil)
	if err != nil {
		return nil, apierror.OperationFailed("Error al crear el empleado", err)
	}
	if exists {
		return nil, apierror.Conflict(fmt.Sprintf("Ya existe un empleado con el email %s", req.Email))
	}

	e := &model.Employee{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Position: req.Position,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, apierror.OperationFailed("Error al crear el empleado", err)
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) Get(ctx context.Context, id uuid.UUID) (*dto.EmployeeResponse, error) {
	e, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.EmployeeResponse], error) {
	q.Normalize()
	employees, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar empleados", err)
	}
	data := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		data = append(data, *employeeToResponse(&employees[i]))
	}
	return dto.NewPaginated(data, q.Page, q.Limit, total), nil
}

func (s *employeeService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	e, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != e.Email {
		exists, err := s.repo.ExistsEmail(ctx, *req.Email, &id)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el empleado", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un empleado con el email %s", *req.Email))
		}
		e.Email = *req.Email
	}
	if req.FullName != nil {
		e.FullName = *req.FullName
	}
	if req.Phone != nil {
		e.Phone = req.Phone
	}
	if req.Position != nil {
		e.Position = req.Position
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el empleado", err)
	}
	return employeeToResponse(e), nil
}

func (s *employeeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findEmployee(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.OperationFailed("Error al eliminar el empleado", err)
	}
	return nil
}

func (s *employeeService) findEmployee(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Empleado", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el empleado", err)
	}
	return e, nil
}

func employeeToResponse(e *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:        e.ID.String(),
		FullName:  e.FullName,
		Email:     e.Email,
		Phone:     e.Phone,
		Position:  e.Position,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
