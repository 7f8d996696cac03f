package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/projectplanning/planning-cloud-api/internal/constants"
	"github.com/projectplanning/planning-cloud-api/internal/dto"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/middleware"
	"github.com/projectplanning/planning-cloud-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates an account, issues a token and stores it in the
// session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		System   string `json:"system"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
		System:   req.System,
	})
	if errors.Is(err, services.ErrInvalidCredentials) {
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials, err.Error(), nil)
		return
	}
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if session, ok := defaultSession(c); ok {
		session.Set(constants.SessionKeyToken, result.Token)
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to save session")
			return
		}
	}

	respondData(c, http.StatusOK, dto.ToLoginResponse(result), "Authentication successful")
}

// Validate checks a token sent in the body or the Authorization header.
func (h *AuthHandler) Validate(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	// The body is optional when the header carries the token.
	_ = c.ShouldBindJSON(&req)

	token := req.Token
	if token == "" {
		token = middleware.ExtractToken(c)
	}

	principal, err := h.authService.Validate(token)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"valid":     true,
		"user":      dto.ToUserDTO(*principal),
		"expiresAt": principal.ExpiresAt,
	}, "Valid token")
}

// Logout revokes the caller's token and clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if err := h.authService.Logout(token); err != nil {
		apierrors.Respond(c, err)
		return
	}

	if session, ok := defaultSession(c); ok {
		session.Clear()
		if err := session.Save(); err != nil {
			apierrors.InternalError(c, "Failed to logout")
			return
		}
	}

	respondData(c, http.StatusOK, nil, "Logged out successfully")
}

func defaultSession(c *gin.Context) (sessions.Session, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil, false
	}
	return sessions.Default(c), true
}
