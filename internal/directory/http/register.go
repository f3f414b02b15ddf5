package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP creates a new account and returns its first token pair.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrAPIInvalidRequest.WriteError(w)
		return
	}
	if err := validateUsername(req.Username); err != nil {
		invalidRequest(err.Error()).WriteError(w)
		return
	}
	if err := validatePassword(req.Password); err != nil {
		invalidRequest(err.Error()).WriteError(w)
		return
	}

	_, pair, err := h.AuthService.Register(ctx, req.Username, req.Password, req.RoleIDs)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("register failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, newTokenResponse(pair))
}
