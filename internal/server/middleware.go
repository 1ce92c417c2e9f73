package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	obscontext "github.com/smallbiznis/stockroom/internal/observability/context"
	"go.uber.org/zap"
)

const (
	cartCookieName  = "stockroom_cart"
	contextRoleKey  = "actor_role"
	contextNameKey  = "actor_name"
	contextCartKey  = "cart_id"
	defaultCartLife = 4 * time.Hour
)

// ResolveActor marks the caller as manager when a valid session cookie is
// present, and as requestor otherwise. A stale cookie is cleared.
func (s *Server) ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, name := authdomain.RoleRequestor, ""

		if token, ok := s.sessions.ReadToken(c); ok {
			principal, err := s.authsvc.ParseSession(c.Request.Context(), token)
			switch {
			case err == nil:
				role, name = principal.Role, principal.Name
			case errors.Is(err, authdomain.ErrSessionExpired), errors.Is(err, authdomain.ErrInvalidSession):
				s.sessions.Clear(c)
			default:
				s.log.Warn("session check failed", zap.Error(err))
			}
		}

		c.Set(contextRoleKey, role)
		c.Set(contextNameKey, name)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), role, name))
		c.Next()
	}
}

func (s *Server) RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorRole(c) != authdomain.RoleManager {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// authorize checks the casbin policy for the resolved role.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), actorRole(c), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// CartSession assigns the opaque cart id cookie on first use.
func (s *Server) CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cartCookieName)
		if err != nil || uuid.Validate(strings.TrimSpace(id)) != nil {
			id = uuid.NewString()
		}

		life := time.Duration(s.cfg.CartTTLMinutes) * time.Minute
		if life <= 0 {
			life = defaultCartLife
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cartCookieName, id, int(life.Seconds()), "/", "", s.cfg.AuthCookieSecure, true)

		c.Set(contextCartKey, id)
		c.Next()
	}
}

func actorRole(c *gin.Context) string {
	if role := c.GetString(contextRoleKey); role != "" {
		return role
	}
	return authdomain.RoleRequestor
}

func actorName(c *gin.Context) string {
	return c.GetString(contextNameKey)
}

func cartID(c *gin.Context) string {
	return c.GetString(contextCartKey)
}
