package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/interfaces/http/dto"
)

// RequirePermission rejects the request with 403 unless the session role
// grants the permission. Must run after ResolveContext.
func RequirePermission(perm identity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := GetRequestContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !identity.RoleHasPermission(rc.Role, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Missing permission: "+string(perm)))
			return
		}
		c.Next()
	}
}
