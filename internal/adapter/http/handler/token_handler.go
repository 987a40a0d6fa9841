package handler

import (
	"time"

	"mpesa-push-relay/internal/adapter/http/dto"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenHandler exposes the cached gateway credential for debugging sandbox
// integrations. Mount behind network controls in production.
type TokenHandler struct {
	credentials ports.CredentialProvider
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(credentials ports.CredentialProvider) *TokenHandler {
	return &TokenHandler{credentials: credentials}
}

// GetToken handles GET /token.
func (h *TokenHandler) GetToken(c *gin.Context) {
	cred, err := h.credentials.Credential(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TokenResponse{
		Success:     true,
		AccessToken: cred.AccessToken,
		ExpiresAt:   cred.ExpiresAt.Format(time.RFC3339),
	})
}
