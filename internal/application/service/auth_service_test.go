package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/memory"
	"github.com/sangkips/fiscal-pos/pkg/apperror"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *utils.JWTManager, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.AddUser("ana", "cashier-pw", "Ana Cruz", entity.RoleCashier))
	require.NoError(t, store.AddUser("ben", "manager-pw", "Ben Reyes", entity.RoleManager))
	jwtManager := utils.NewJWTManager(utils.TokenConfig{Secret: "test-secret", TerminalID: "POS-01", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour})
	return NewAuthService(store.Users(), jwtManager, logger.Nop()), jwtManager, store
}

func TestAuthService_Login(t *testing.T) {
	svc, jwtManager, _ := newAuthService(t)
	ctx := context.Background()

	out, err := svc.Login(ctx, &LoginInput{Username: "ana", Password: "cashier-pw"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", out.User.FullName())

	claims, err := jwtManager.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	operatorID, err := claims.OperatorID()
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, operatorID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "POS-01", claims.Terminal())
	assert.False(t, claims.CanApprove)
	assert.Equal(t, []string{entity.RoleCashier}, claims.Roles)
	assert.Contains(t, claims.Permissions, entity.PermissionSell)
	assert.NotContains(t, claims.Permissions, entity.PermissionZReading)

	refreshed, err := svc.RefreshToken(ctx, out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken(ctx, out.AccessToken+"x")
	assert.True(t, errors.Is(err, apperror.ErrInvalidToken))

	// an access token cannot be exchanged for new tokens
	_, err = svc.RefreshToken(ctx, out.AccessToken)
	assert.True(t, errors.Is(err, apperror.ErrInvalidToken))
}

func TestAuthService_ManagerTokenCanApprove(t *testing.T) {
	svc, jwtManager, _ := newAuthService(t)

	out, err := svc.Login(context.Background(), &LoginInput{Username: "ben", Password: "manager-pw"})
	require.NoError(t, err)

	claims, err := jwtManager.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.CanApprove)
	assert.Equal(t, "Ben Reyes", claims.Name)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _ := newAuthService(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "ana", "nope"},
		{"unknown user", "zed", "cashier-pw"},
		{"empty username", " ", "cashier-pw"},
		{"empty password", "ana", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &LoginInput{Username: tt.username, Password: tt.password})
			assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))
		})
	}
}

func TestAuthService_VerifyManager(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	manager, err := svc.VerifyManager(ctx, "ben", "manager-pw")
	require.NoError(t, err)
	assert.Equal(t, "Ben Reyes", manager.Name)
	assert.True(t, manager.IsManager())

	_, err = svc.VerifyManager(ctx, "ana", "cashier-pw")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))
	_, err = svc.VerifyManager(ctx, "ben", "wrong")
	assert.True(t, errors.Is(err, apperror.ErrManagerRequired))
}

func TestAuthService_InactiveUserCannotLogin(t *testing.T) {
	svc, _, store := newAuthService(t)
	ctx := context.Background()
	users := NewUserService(store.Users())

	ana, err := store.Users().GetByUsername(ctx, "ana")
	require.NoError(t, err)
	ben, err := store.Users().GetByUsername(ctx, "ben")
	require.NoError(t, err)

	_, err = users.SetUserActive(ctx, ActorFromUser(ben), ana.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginInput{Username: "ana", Password: "cashier-pw"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	_, err = users.SetUserActive(ctx, ActorFromUser(ben), ben.ID, false)
	assert.True(t, apperror.IsKind(err, apperror.KindState))
}

func TestUserService_CreateUser(t *testing.T) {
	_, _, store := newAuthService(t)
	ctx := context.Background()
	users := NewUserService(store.Users())

	_, err := users.CreateUser(ctx, &CreateUserInput{Username: "", Password: "x", Role: "owner"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Len(t, apperror.GetAppError(err).Errors, 4)

	created, err := users.CreateUser(ctx, &CreateUserInput{Username: "cora", Password: "secret1", FirstName: "Cora", Role: entity.RoleCashier})
	require.NoError(t, err)
	assert.True(t, created.HasRole(entity.RoleCashier))
	assert.True(t, created.IsActive)

	_, err = users.CreateUser(ctx, &CreateUserInput{Username: "CORA", Password: "secret1", FirstName: "Cora", Role: entity.RoleCashier})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	list, err := users.ListUsers(ctx, &ListUsersInput{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.Equal(t, int64(3), list.Pagination.Total)
	assert.Equal(t, "ana", list.Users[0].Username)
}
