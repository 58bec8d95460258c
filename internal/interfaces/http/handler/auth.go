package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/identity"
	"github.com/stockflows/backend/internal/infrastructure/config"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
	"github.com/stockflows/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves login, logout and session context endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookie config.CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sf_session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Login authenticates credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)
	h.OK(c, result.Context)
}

// Logout revokes the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims != nil {
		if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.clearSessionCookie(c)
	h.NoContent(c)
}

// Me returns the current session context
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
		return
	}

	session, err := h.authService.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, session)
}

// SwitchOrg reissues the session for another org (platform admins only)
func (h *AuthHandler) SwitchOrg(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req identity.SwitchOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.SwitchOrg(c.Request.Context(), claims, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)
	h.OK(c, result.Context)
}

// SwitchBranch reissues the session pinned to another branch
func (h *AuthHandler) SwitchBranch(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req identity.SwitchBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.SwitchBranch(c.Request.Context(), claims, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token, result.Session.ExpiresAt)
	h.OK(c, result.Context)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(h.sameSite())
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) sameSite() http.SameSite {
	switch h.cookie.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
