package service

import (
	"context"
	"testing"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserCreateHashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name:     "Caja 1",
		Email:    "caja1@mistica.local",
		Password: "clave-segura",
		Role:     model.RoleEmployee,
	})
	require.NoError(t, err)

	stored := repo.users[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave-segura", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))
}

func TestUserCreateEmailConflict(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	repo.add(&model.User{Name: "Caja 1", Email: "caja1@mistica.local", Role: model.RoleEmployee})

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Name:     "Caja 2",
		Email:    "caja1@mistica.local",
		Password: "otra-clave",
		Role:     model.RoleEmployee,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestUserUpdateRehashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	hash, err := bcrypt.GenerateFromPassword([]byte("vieja"), bcrypt.MinCost)
	require.NoError(t, err)
	u := repo.add(&model.User{Name: "Caja 1", Email: "caja1@mistica.local", PasswordHash: string(hash), Role: model.RoleEmployee})

	newPassword := "nueva-clave"
	_, err = svc.Update(context.Background(), u.ID, dto.UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)

	stored := repo.users[u.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("nueva-clave")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("vieja")))
}
