package controllers

import (
	"net/http"

	dbpkg "pecas/db"
	"pecas/models"
	"pecas/tools"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login autentica contra o provedor local (dev/testes). Em produção o app
// autentica direto no provedor de identidade e só manda o bearer token;
// este endpoint continua útil para ferramentas e smoke tests.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email e password são obrigatórios", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		RespondError(c, "usuário ou senha inválidos", http.StatusUnauthorized)
		return
	}
	if user.PasswordHash == "" || !tools.CheckPasswordHash(req.Password, user.PasswordHash) {
		RespondError(c, "usuário ou senha inválidos", http.StatusUnauthorized)
		return
	}

	signed, err := tools.SignToken(conf.Security.JwtSecret, user.UID, user.Email, conf.Security.TokenValidHours)
	if err != nil {
		RespondError(c, "erro ao assinar token", http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, LoginResponse{Token: signed, User: user})
}
