package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// SessionCookie is the default name of the cookie carrying the session token.
	SessionCookie = "token"
)

// TokenValidator turns a session token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Session reads the session token from a named cookie, falling back to an
// Authorization bearer header for API clients.
type Session struct {
	validator TokenValidator
	cookie    string
}

// NewSession builds a session guard. An empty cookie name means SessionCookie.
func NewSession(validator TokenValidator, cookie string) *Session {
	if cookie == "" {
		cookie = SessionCookie
	}
	return &Session{validator: validator, cookie: cookie}
}

// Cookie returns the name of the session cookie.
func (s *Session) Cookie() string {
	return s.cookie
}

// Require rejects requests without a valid session.
func (s *Session) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.token(c)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "no token provided"))
			c.Abort()
			return
		}

		claims, err := s.validator.ValidateToken(token)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// Optional attaches claims when a valid session is present but does not block.
func (s *Session) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := s.token(c); token != "" {
			if claims, err := s.validator.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// CurrentClaims returns the claims attached by Session.Require or Session.Optional.
func CurrentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}

func (s *Session) token(c *gin.Context) string {
	if cookie, err := c.Cookie(s.cookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
