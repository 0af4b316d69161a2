package session

import (
	"context"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

type userKey struct{}

// WithUser attaches the authenticated caller to ctx.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the caller attached with WithUser.
func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey{}).(*model.User)
	return user, ok && user != nil
}
