package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/teamkoubyte/Koubyte-sub001/internal/auth"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
)

const AccessCookie = "kb_access"

// Identity is the resolved caller, attached to the request context once per
// request. The session is the only source of role truth; handlers never trust
// ids from the payload as the acting user.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type identityKey struct{}

// Session resolves the caller from the access cookie or a bearer token. It
// never rejects; the tier middlewares below fail closed.
func Session(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := ""
			if cookie, err := r.Cookie(AccessCookie); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, Identity{
				UserID: claims.UserID,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !id.IsAdmin() {
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
