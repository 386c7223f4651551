package service

import (
	"context"
	"errors"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/config"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/middleware"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
	// Me resolves the authenticated user's profile.
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{users: users, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("Credenciales inválidas")
		}
		return nil, apierror.OperationFailed("Error al iniciar sesión", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Unauthorized("Credenciales inválidas")
	}
	return s.issueTokens(u)
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Unauthorized("Refresh token inválido o expirado")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apierror.Unauthorized("Refresh token inválido o expirado")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("Refresh token inválido o expirado")
		}
		return nil, apierror.OperationFailed("Error al refrescar la sesión", err)
	}
	return s.issueTokens(u)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Usuario", userID.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el usuario", err)
	}
	return userToResponse(u), nil
}

func (s *authService) issueTokens(u *model.User) (*dto.LoginResponse, error) {
	accessTTL := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	refreshTTL := time.Duration(s.cfg.JWTRefreshHours) * time.Hour

	access, err := s.sign(u, accessTTL)
	if err != nil {
		return nil, apierror.OperationFailed("Error al generar el token", err)
	}
	refresh, err := s.sign(u, refreshTTL)
	if err != nil {
		return nil, apierror.OperationFailed("Error al generar el token", err)
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
		User:         *userToResponse(u),
	}, nil
}

func (s *authService) sign(u *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &middleware.JWTClaims{
		UserID: u.ID.String(),
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
