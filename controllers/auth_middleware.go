package controllers

import (
	"net/http"
	"strings"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "auth_user"

// AuthRequired valida o bearer token no provedor de identidade e carrega o
// espelho do usuário (uid/email/role) para o contexto.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(h[len("Bearer "):])

		if identity == nil {
			RespondError(c, "provedor de identidade não configurado", http.StatusInternalServerError)
			c.Abort()
			return
		}
		uid, email, err := identity.VerifyToken(c.Request.Context(), token)
		if err != nil {
			RespondError(c, "token inválido ou expirado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
			c.Abort()
			return
		}

		var user models.User
		err = db.Where("uid = ?", uid).First(&user).Error
		if err != nil && email != "" {
			// conta criada no provedor antes do espelho local: tenta por e-mail
			err = db.Where("email = ?", email).First(&user).Error
		}
		if err != nil {
			RespondError(c, "user not found", http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// GetUserLogged returns the user loaded by AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
