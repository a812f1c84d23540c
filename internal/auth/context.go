// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"errors"

	"github.com/dukerupert/choreboard/internal/model"
)

// ErrUnauthenticated is returned by Caller when no session was attached.
var ErrUnauthenticated = errors.New("unauthenticated")

type contextKey struct{}

// AuthContext identifies the member behind a request and the household they
// act in.
type AuthContext struct {
	UserID      int64
	HouseholdID int64
	Role        string
	SessionID   int64
}

func (ac AuthContext) IsAdmin() bool {
	return ac.Role == model.RoleAdmin
}

// CanManage reports whether the caller may change member userID's profile:
// admins may change anyone, members only themselves.
func (ac AuthContext) CanManage(userID int64) bool {
	return ac.IsAdmin() || ac.UserID == userID
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// Caller is FromContext for handlers that sit behind RequireAuth.
func Caller(ctx context.Context) (AuthContext, error) {
	ac, ok := FromContext(ctx)
	if !ok {
		return AuthContext{}, ErrUnauthenticated
	}
	return ac, nil
}

func HouseholdID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.HouseholdID
}

func UserID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.UserID
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.IsAdmin()
}
