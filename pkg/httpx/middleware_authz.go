package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardenauth/warden/pkg/slogx"
)

// PermissionEvaluator decides whether a user holds at least one of the
// required permission names. Implementations must read role and permission
// state fresh on every call so revocations take effect immediately.
type PermissionEvaluator interface {
	Authorize(ctx context.Context, userID int64, required []string) (bool, error)
}

// RequireAnyPermission gates a route on the caller holding at least one of
// the listed permissions. An empty requirement list means the route is
// public and the gate always passes. Unresolvable subjects are denied.
func RequireAnyPermission(eval PermissionEvaluator, required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			log := slogx.FromContext(ctx)

			userID := UserIDFromContext(ctx)
			if userID == 0 {
				writeBearerError(w, "missing authenticated subject")
				return
			}

			allowed, err := eval.Authorize(ctx, userID, required)
			if err != nil {
				log.Warn("permission lookup failed", "user_id", userID, "err", err)
				writePermissionError(w, required...)
				return
			}
			if !allowed {
				writePermissionError(w, required...)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writePermissionError(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="insufficient_permission", permission="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "insufficient_permission",
		"error_description": "the authenticated user holds none of the required permissions",
	})
}
