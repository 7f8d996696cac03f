package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/services"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	Validate(token string) (*services.Principal, error)
}

// RequireAuth rejects requests without a valid token. The token is read
// from the Authorization header, falling back to the login session.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			apierrors.UnauthorizedResponse(c, "Access token required")
			c.Abort()
			return
		}

		principal, err := validator.Validate(token)
		if err != nil {
			apierrors.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Store principal in context for easy access in handlers
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyToken, token)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// lets the request through either way
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if principal, err := validator.Validate(token); err == nil {
				c.Set(constants.ContextKeyPrincipal, principal)
				c.Set(constants.ContextKeyToken, token)
			}
		}
		c.Next()
	}
}

// ExtractToken returns the bearer token of the request, or the token stored
// in the session when there is no Authorization header
func ExtractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	// Routes may run without the sessions middleware.
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	if token, ok := sessions.Default(c).Get(constants.SessionKeyToken).(string); ok {
		return token
	}
	return ""
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (*services.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*services.Principal)
	return principal, ok
}
