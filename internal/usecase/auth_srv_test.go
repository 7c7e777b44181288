package usecase

import (
	"context"
	"testing"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/request"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tokens := utils.NewTokenManager(utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1})

	registered, err := env.svc.Auth.Register(ctx, &request.RegisterRequest{
		Username: "dae-su",
		Email:    "Dae-Su@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "dae-su@example.com", registered.Email)
	assert.Equal(t, entity.RoleUser, registered.Role)

	identity, err := tokens.Parse(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, identity.UserID.String())
	assert.Equal(t, "user", identity.Role)

	t.Run("by email", func(t *testing.T) {
		resp, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Email: "DAE-SU@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, registered.UserID, resp.UserID)
	})

	t.Run("by username", func(t *testing.T) {
		resp, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "dae-su", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Username: "dae-su", Password: "nope123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("neither email nor username", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &request.LoginRequest{Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("profile", func(t *testing.T) {
		profile, err := env.svc.User.GetProfile(ctx, uuid.MustParse(registered.UserID))
		require.NoError(t, err)
		assert.Equal(t, "dae-su", profile.Username)

		_, err = env.svc.User.GetProfile(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Auth.Register(ctx, &request.RegisterRequest{Username: "woo-jin", Email: "woojin@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *request.RegisterRequest
		want error
	}{
		{"duplicate email", &request.RegisterRequest{Username: "other", Email: "WOOJIN@example.com", Password: "secret1"}, ErrAlreadyExists},
		{"duplicate username", &request.RegisterRequest{Username: "woo-jin", Email: "new@example.com", Password: "secret1"}, ErrAlreadyExists},
		{"short password", &request.RegisterRequest{Username: "mido", Email: "mido@example.com", Password: "123"}, ErrInvalidInput},
		{"short username", &request.RegisterRequest{Username: "mi", Email: "mido@example.com", Password: "secret1"}, ErrInvalidInput},
		{"bad email", &request.RegisterRequest{Username: "mido", Email: "mido", Password: "secret1"}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_AdminEmailGetsAdminRole(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Auth.Register(context.Background(), &request.RegisterRequest{
		Username: "boss",
		Email:    "Admin@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.Role)

	users, err := env.svc.User.GetAllUsers(context.Background(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), users.Pagination.Total)
}
