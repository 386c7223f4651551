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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages API accounts. Only admins reach these operations; the
// router enforces that.
type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.UserResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	exists, err := s.repo.ExistsEmail(ctx, req.Email, nil)
	if err != nil {
		return nil, apierror.OperationFailed("Error al crear el usuario", err)
	}
	if exists {
		return nil, apierror.Conflict(fmt.Sprintf("Ya existe un usuario con el email %s", req.Email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.OperationFailed("Error al crear el usuario", err)
	}
	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apierror.OperationFailed("Error al crear el usuario", err)
	}
	return userToResponse(u), nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	u, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToResponse(u), nil
}

func (s *userService) List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.UserResponse], error) {
	q.Normalize()
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar usuarios", err)
	}
	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, *userToResponse(&users[i]))
	}
	return dto.NewPaginated(data, q.Page, q.Limit, total), nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != u.Email {
		exists, err := s.repo.ExistsEmail(ctx, *req.Email, &id)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el usuario", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un usuario con el email %s", *req.Email))
		}
		u.Email = *req.Email
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el usuario", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el usuario", err)
	}
	return userToResponse(u), nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.OperationFailed("Error al eliminar el usuario", err)
	}
	return nil
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Usuario", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el usuario", err)
	}
	return u, nil
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
