package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/service/access"
	"github.com/rakibul/healthdir-api/pkg/auth"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
	"github.com/rakibul/healthdir-api/pkg/httputil"
)

const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextActorRole = "actorRole"
)

type AuthMiddleware struct {
	tokens auth.TokenService
	gate   *access.Gate
}

func NewAuthMiddleware(tokens auth.TokenService, gate *access.Gate) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		gate:   gate,
	}
}

// Authenticate verifies the bearer token and stores the principal in the
// request context. It does not resolve a role; that happens per check in
// RequireRole so role changes take effect immediately.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated(err))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// RequireRole is the access-control gate applied per route group. The
// decision is recomputed on every request.
func (m *AuthMiddleware) RequireRole(required model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principalID := principalFromContext(c)

		switch m.gate.Authorize(c.Request.Context(), principalID, required) {
		case access.Allow:
			c.Set(ContextActorRole, string(required))
			c.Next()
		case access.DenyUnauthenticated:
			httputil.RespondWithError(c, apperrors.Unauthenticated(nil))
			c.Abort()
		default:
			// Generic denial; never leak which role the route wanted.
			httputil.RespondWithError(c, apperrors.Forbidden(""))
			c.Abort()
		}
	}
}

func principalFromContext(c *gin.Context) *uuid.UUID {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// ActorFromContext rebuilds the acting principal for service calls.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	id := principalFromContext(c)
	if id == nil {
		return model.Actor{}, false
	}
	role := model.Role(c.GetString(ContextActorRole))
	if role == "" {
		role = model.RoleNone
	}
	return model.Actor{UserID: *id, Role: role}, true
}
