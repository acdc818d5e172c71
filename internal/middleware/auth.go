package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const ContextIdentity = "identity"

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*model.Identity, error)
}

type AdminChecker interface {
	RequireAdmin(ctx context.Context, identity *model.Identity) error
}

type AuthMiddleware struct {
	verifier  TokenVerifier
	authority AdminChecker
}

func NewAuthMiddleware(verifier TokenVerifier, authority AdminChecker) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		authority: authority,
	}
}

// Authenticate verifies the bearer token and stores the caller's identity in
// the context. No header is 401; anything else wrong is 403.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, errors.Forbidden("", nil))
			return
		}

		identity, err := m.verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		if err := m.authority.RequireAdmin(c.Request.Context(), identity); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (*model.Identity, bool) {
	value, exists := c.Get(ContextIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*model.Identity)
	return identity, ok && identity != nil
}
