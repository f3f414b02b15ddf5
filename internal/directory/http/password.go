package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type ChangePasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP changes the authenticated user's password and returns a fresh
// token pair. Outstanding refresh tokens stop working.
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == 0 {
		ErrAPIInvalidToken.WriteError(w)
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrAPIInvalidRequest.WriteError(w)
		return
	}
	if req.CurrentPassword == "" {
		invalidRequest("current_password is required").WriteError(w)
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		invalidRequest(err.Error()).WriteError(w)
		return
	}

	pair, err := h.AuthService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("password change failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
