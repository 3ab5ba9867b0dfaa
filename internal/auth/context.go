package auth

import (
	"context"

	"github.com/frahmantamala/hr-management/internal"
)

// ContextUserKey is where AuthMiddleware stores the resolved *User.
const ContextUserKey = internal.ContextUserKey

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// CurrentUser is UserFromContext for handlers behind AuthMiddleware.
func CurrentUser(ctx context.Context) (*User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, internal.ErrAuthRequired
	}
	return u, nil
}
