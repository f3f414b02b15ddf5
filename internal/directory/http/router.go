package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/internal/directory/store"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Issuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService      *service.AuthService
	UserService      *service.UserService
	AuthorizeService *service.AuthorizeService
}

func NewRouter(
	tokens *jwtx.Issuer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDirectory()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + username to slow brute force
	// against a single account
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// POST /refresh - strict rate limit by IP (unauthenticated; the token
	// itself is the credential)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /profile - authenticated read, lenient limit
	r.Mux.Handle("GET /v1/auth/profile",
		httpx.Chain(&ProfileHandler{AuthService: r.AuthService},
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// PATCH /password - authenticated mutation, moderate limit
	r.Mux.Handle("PATCH /v1/auth/password",
		httpx.Chain(&ChangePasswordHandler{AuthService: r.AuthService},
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Two-step account deletion - strict limits, both re-prove possession
	account := &AccountHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/delete-request",
		httpx.Chain(http.HandlerFunc(account.HandleDeleteRequest),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/account",
		httpx.Chain(http.HandlerFunc(account.HandleDeleteConfirm),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerDirectory() {
	users := &UsersHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleGet),
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyPermission(r.AuthorizeService, domain.PermUserRead),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	roles := &RolesHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/roles",
		httpx.Chain(roles,
			httpx.AuthnMiddleware(r.tokens),
			httpx.RequireAnyPermission(r.AuthorizeService, domain.PermRoleRead),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient limits (monitoring systems poll)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
