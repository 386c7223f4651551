package service

import (
	"context"
	"testing"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/config"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── UserRepository stub ──────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.add(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ExistsEmail(_ context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	for _, u := range r.users {
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context, _ dto.PageQuery) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Tests ────────────────────────────────────────────────────────────────────

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo, *model.User) {
	t.Helper()
	repo := newStubUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := repo.add(&model.User{
		Name:         "Admin",
		Email:        "admin@mistica.local",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo, u
}

func TestLoginIssuesTokens(t *testing.T) {
	svc, _, u := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mistica.local",
		Password: "secreto123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, u.ID.String(), resp.User.ID)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mistica.local",
		Password: "incorrecta",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	// Unknown email and bad password are indistinguishable to the caller.
	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nadie@mistica.local",
		Password: "loquesea",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestRefreshReissuesTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mistica.local",
		Password: "secreto123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "no-es-un-jwt"})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	svc, repo, u := newAuthFixture(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@mistica.local",
		Password: "secreto123",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindUnauthorized))
}

func TestMe(t *testing.T) {
	svc, _, u := newAuthFixture(t)

	resp, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@mistica.local", resp.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
