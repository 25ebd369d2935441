package middleware

import (
	"context"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
)

type contextKey string

const (
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithRole injects the actor role into the context. Exposed for tests.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
