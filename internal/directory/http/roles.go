package http

import (
	"net/http"

	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/slogx"
)

type RolesHandler struct {
	UserService *service.UserService
}

// ServeHTTP lists all roles with their permissions. Gated behind role_read.
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	roles, err := h.UserService.ListRoles(ctx)
	if err != nil {
		log.Error("role listing failed", "err", err)
		ErrAPIServerError.WriteError(w)
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, newRoleResponse(role))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
