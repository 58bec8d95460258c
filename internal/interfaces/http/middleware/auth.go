package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/infrastructure/auth"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	bearerPrefix     = "Bearer "
)

// SessionAuthConfig holds the session middleware dependencies
type SessionAuthConfig struct {
	JWTService *auth.JWTService
	// Revoker is optional; when nil, revocation checks are skipped
	Revoker auth.TokenRevoker
	// CookieName is the session cookie, default "sf_session"
	CookieName string
	Logger     *zap.Logger
}

// SessionAuth authenticates requests from the session cookie. A bearer
// token in the Authorization header is accepted as a fallback for
// non-browser clients.
func SessionAuth(cfg SessionAuthConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "sf_session"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.JWTService.Validate(token)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if err == auth.ErrExpiredToken {
				code = dto.ErrCodeTokenExpired
			}
			abortUnauthorized(c, code, "Session is not valid")
			return
		}

		if cfg.Revoker != nil {
			ctx := c.Request.Context()
			if claims.ID != "" {
				revoked, err := cfg.Revoker.IsRevoked(ctx, claims.ID)
				if err != nil {
					// fail open: availability over strict revocation
					cfg.Logger.Error("revocation check failed",
						zap.String("jti", claims.ID), zap.Error(err))
				} else if revoked {
					abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Session has been revoked")
					return
				}
			}
			if claims.IssuedAt != nil {
				revoked, err := cfg.Revoker.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
				if err != nil {
					cfg.Logger.Error("user revocation check failed",
						zap.String("user_id", claims.UserID), zap.Error(err))
				} else if revoked {
					abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Session has been revoked")
					return
				}
			}
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetClaims returns the authenticated session claims, nil when the request
// did not pass the session middleware
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(SessionClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
