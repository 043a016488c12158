package router

import (
	"net/http"

	"pecas/controllers"
	"pecas/models"

	"github.com/gin-gonic/gin"
)

// Authorizer blocks access to protected routes when the user has no valid role.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}

		if !models.ValidRole(user.Role) {
			controllers.RespondError(c, "sem acesso ao aplicativo", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
