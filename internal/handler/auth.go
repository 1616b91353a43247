package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
)

// AuthHandler mints and inspects bearer tokens. Credential verification is an
// external provider's job; the mint endpoint exists for deployments without
// one (dev, integration rigs) and is guarded by a shared bootstrap secret.
type AuthHandler struct {
	tokens          *service.TokenService
	bootstrapSecret string
}

// NewAuthHandler creates a new AuthHandler. An empty bootstrapSecret disables
// token minting entirely.
func NewAuthHandler(tokens *service.TokenService, bootstrapSecret string) *AuthHandler {
	return &AuthHandler{tokens: tokens, bootstrapSecret: bootstrapSecret}
}

type tokenRequest struct {
	Secret string `json:"secret" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=student manager admin"`
}

// Token issues a signed token for the given user and role.
func (h *AuthHandler) Token(c echo.Context) error {
	if h.bootstrapSecret == "" {
		return domain.ErrNotFound
	}

	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.bootstrapSecret)) != 1 {
		return domain.ErrUnauthorized
	}

	token, err := h.tokens.Issue(domain.Actor{ID: req.UserID, Role: domain.Role(req.Role)})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]string{"access_token": token})
}

// Me returns the validated caller identity.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return JSON(c, http.StatusOK, actor)
}
