package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/internal/directory/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// APIError is the wire form of every error response: a stable machine code
// plus a human-readable description.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, e.StatusCode, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	ErrAPIInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "the request is malformed or missing required parameters",
	}

	ErrAPIInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "invalid username or password",
	}

	ErrAPIUsernameTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        "username_taken",
		Description: "the username is already registered",
	}

	ErrAPIInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: "the token is missing, invalid, expired or revoked",
	}

	ErrAPISamePassword = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        "same_password",
		Description: "the new password must differ from the current one",
	}

	ErrAPIInvalidDeletionToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_deletion_token",
		Description: "the deletion token is invalid, expired or already used",
	}

	ErrAPIConfirmationMismatch = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "confirmation_mismatch",
		Description: "the confirmation phrase does not match",
	}

	ErrAPINotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        "not_found",
		Description: "the requested resource does not exist",
	}

	ErrAPIServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "internal server error",
	}
)

// invalidRequest returns a 400 with a specific description.
func invalidRequest(description string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: description,
	}
}

// mapServiceError converts domain sentinels into wire errors. Anything
// unrecognized becomes a 500; the cause is logged by the caller, never
// leaked.
func mapServiceError(err error) *APIError {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		return ErrAPIUsernameTaken
	case errors.Is(err, service.ErrInvalidCredentials):
		return ErrAPIInvalidCredentials
	case errors.Is(err, service.ErrInvalidRefresh):
		return ErrAPIInvalidToken
	case errors.Is(err, service.ErrSamePassword):
		return ErrAPISamePassword
	case errors.Is(err, service.ErrInvalidDeletionToken):
		return ErrAPIInvalidDeletionToken
	case errors.Is(err, service.ErrConfirmationMismatch):
		return ErrAPIConfirmationMismatch
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrRoleNotFound):
		return ErrAPINotFound
	default:
		return ErrAPIServerError
	}
}

// decodeJSON parses a JSON request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Request and response shapes.

type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	RoleIDs  []int64 `json:"role_ids,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type DeleteRequestRequest struct {
	Password string `json:"password"`
}

type DeleteConfirmRequest struct {
	DeletionToken string `json:"deletion_token"`
	Confirmation  string `json:"confirmation"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type DeletionTokenResponse struct {
	DeletionToken string    `json:"deletion_token"`
	ExpiresAt     time.Time `json:"expires_at"`
	Confirmation  string    `json:"confirmation"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

func newTokenResponse(pair domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// newUserResponse strips the password hash and session state.
func newUserResponse(user domain.User, roles []domain.Role) UserResponse {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Roles:     names,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func newRoleResponse(role domain.Role) RoleResponse {
	perms := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, p.Name)
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
	}
}

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 128
)

// validateUsername enforces shape only; uniqueness is the service's job.
func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' && r != '.' {
			return errors.New("username may only contain letters, digits, '_', '-' and '.'")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("password must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}
	return nil
}
