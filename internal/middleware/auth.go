package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/mpower/youthopia/internal/model"
)

type ctxKey struct{}

// SessionSource yields the signed-in user, or nil.
type SessionSource interface {
	Session() *model.User
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the user stored by RequireSession or RequireRole.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxKey{}).(*model.User)
	return u
}

// RequireSession rejects requests while nobody is signed in.
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return RequireRole(src)
}

// RequireRole rejects requests unless the signed-in user holds one of
// roles. With no roles any signed-in user passes.
func RequireRole(src SessionSource, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := src.Session()
			if u == nil {
				http.Error(w, "Not signed in", http.StatusUnauthorized)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, u.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
