package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP authenticates a username/password pair and returns a fresh token
// pair, replacing any prior session.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrAPIInvalidRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		invalidRequest("username and password are required").WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("login failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
