package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/model"
)

const (
	// TokenCookie carries the session token set at login.
	TokenCookie = "token"

	userKey = "user"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// DenyFunc writes the response for a rejected request and aborts it.
type DenyFunc func(c *gin.Context, status int, message string)

type AuthMiddleware struct {
	auth   Authenticator
	logger *slog.Logger
	deny   DenyFunc
}

func NewAuthMiddleware(auth Authenticator, logger *slog.Logger, deny DenyFunc) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	if deny == nil {
		deny = func(c *gin.Context, status int, message string) {
			c.AbortWithStatusJSON(status, gin.H{"error": message})
		}
	}
	return &AuthMiddleware{auth: auth, logger: logger, deny: deny}
}

// CurrentUser returns the user resolved by one of the auth middlewares, or
// nil for anonymous requests.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func sessionToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	token, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// BearerAuth accepts only an Authorization: Bearer header.
func (m *AuthMiddleware) BearerAuth() gin.HandlerFunc {
	return m.require(bearerToken)
}

// SessionAuth accepts the bearer header or the login cookie.
func (m *AuthMiddleware) SessionAuth() gin.HandlerFunc {
	return m.require(sessionToken)
}

func (m *AuthMiddleware) require(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extract(c)
		if token == "" {
			m.logger.Debug("request has no credential", "path", c.FullPath())
			m.deny(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !m.resolve(c, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through but still rejects a
// credential that is present and invalid.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		if !m.resolve(c, token) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context, token string) bool {
	user, err := m.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		m.logger.Debug("request has invalid credential", "path", c.FullPath(), "error", err)
		m.deny(c, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	c.Set(userKey, user)
	return true
}

// RequireAdmin must run after one of the auth middlewares.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			m.deny(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.IsAdmin {
			m.deny(c, http.StatusForbidden, "Unauthorized")
			return
		}
		c.Next()
	}
}
