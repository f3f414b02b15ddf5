package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// AccountHandler serves the two-step deletion flow: request a short-lived
// deletion token, then confirm with it plus the confirmation phrase.
type AccountHandler struct {
	AuthService *service.AuthService
}

// HandleDeleteRequest re-verifies the password and issues a single-use
// deletion token.
func (h *AccountHandler) HandleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == 0 {
		ErrAPIInvalidToken.WriteError(w)
		return
	}

	var req DeleteRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrAPIInvalidRequest.WriteError(w)
		return
	}
	if req.Password == "" {
		invalidRequest("password is required").WriteError(w)
		return
	}

	token, expiresAt, err := h.AuthService.RequestDeletion(ctx, userID, req.Password)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("deletion request failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, DeletionTokenResponse{
		DeletionToken: token,
		ExpiresAt:     expiresAt,
		Confirmation:  service.ConfirmDeletionPhrase,
	})
}

// HandleDeleteConfirm consumes the deletion token and removes the account.
func (h *AccountHandler) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == 0 {
		ErrAPIInvalidToken.WriteError(w)
		return
	}

	var req DeleteConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrAPIInvalidRequest.WriteError(w)
		return
	}
	if req.DeletionToken == "" {
		invalidRequest("deletion_token is required").WriteError(w)
		return
	}

	if err := h.AuthService.ConfirmDeletion(ctx, userID, req.DeletionToken, req.Confirmation); err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("account deletion failed", "user_id", userID, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
