package http

import (
	"net/http"
	"strconv"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleGet returns a user by id. Gated behind user_read.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		invalidRequest("id must be a positive integer").WriteError(w)
		return
	}

	user, roles, err := h.UserService.GetUserByID(ctx, id)
	if err != nil {
		apiErr := mapServiceError(err)
		if apiErr == ErrAPIServerError {
			log.Error("user lookup failed", "id", id, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user, roles))
}
