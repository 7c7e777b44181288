package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	role, _ := GetRoleFromContext(ctx)
	return Identity{UserID: userID, Role: role}, true
}

func SetUserContext(ctx context.Context, identity Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, identity.UserID)
	ctx = context.WithValue(ctx, RoleKey, identity.Role)
	return ctx
}
