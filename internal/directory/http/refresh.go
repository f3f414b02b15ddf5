package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP rotates a refresh token presented as a Bearer credential. The
// old token stops working the moment the new pair is issued.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.BearerToken(r)
	if token == "" {
		ErrAPIInvalidToken.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(ctx, token)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("refresh failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}
