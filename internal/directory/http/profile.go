package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type ProfileHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP returns the authenticated user's profile, sans credentials and
// session state.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == 0 {
		ErrAPIInvalidToken.WriteError(w)
		return
	}

	user, roles, err := h.AuthService.GetProfile(ctx, userID)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("profile lookup failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user, roles))
}
