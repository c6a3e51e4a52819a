package middleware

import (
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"

	"github.com/gin-gonic/gin"
)

// RequireRole libera a rota apenas para os papeis informados.
// Admin sempre passa.
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextRole)
		if !exists {
			respondAppError(c, appErrors.ErrUnauthorized)
			return
		}

		role, ok := value.(shared.Role)
		if !ok {
			respondAppError(c, appErrors.ErrForbidden.WithDetail("reason", "papel invalido"))
			return
		}

		if role == shared.RoleAdmin {
			c.Next()
			return
		}

		if _, ok := allowed[role]; !ok {
			respondAppError(c, appErrors.ErrForbidden.WithDetail("role", string(role)))
			return
		}

		c.Next()
	}
}
