package controllers

import (
	"net/http"

	dbpkg "pecas/db"
	"pecas/models"
	"pecas/tools"

	"github.com/gin-gonic/gin"
)

type CreateUserBody struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Role     string `json:"role" form:"role"`
}

type UpdateUserBody struct {
	Name string `json:"name" form:"name"`
	Role string `json:"role" form:"role"`
}

// GET /admin/users?role=&page=&pageSize= (admin)
func GetAdminUsers(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	page := clampInt(queryInt(c, "page", 1), 1, 1_000_000)
	pageSize := clampInt(queryInt(c, "pageSize", 20), 1, 100)

	q := db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		if !models.ValidRole(role) {
			RespondError(c, "role inválido", http.StatusBadRequest)
			return
		}
		q = q.Where("role = ?", role)
	}

	var total int
	if err := q.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var users []models.User
	if err := q.Order("email asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"users":    users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// POST /admin/users (admin)
// Cria a conta no provedor de identidade e o espelho local.
func CreateAdminUser(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body CreateUserBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(body.Email) {
		RespondError(c, "E-mail inválido!", http.StatusBadRequest)
		return
	}
	if missing := tools.CheckPassword(body.Password); missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}
	if body.Role == "" {
		body.Role = models.USER_ROLE_TECNICO
	}
	if !models.ValidRole(body.Role) {
		RespondError(c, "role inválido", http.StatusBadRequest)
		return
	}

	var existing models.User
	if err := db.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		RespondError(c, "já existe usuário com este e-mail", http.StatusConflict)
		return
	}

	if identity == nil {
		RespondError(c, "provedor de identidade não configurado", http.StatusInternalServerError)
		return
	}
	uid, err := identity.CreateAccount(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		RespondError(c, "falha ao criar conta no provedor: "+err.Error(), http.StatusBadGateway)
		return
	}
	if err := identity.SetRole(c.Request.Context(), uid, body.Role); err != nil {
		RespondError(c, "falha ao definir papel no provedor: "+err.Error(), http.StatusBadGateway)
		return
	}

	hash, err := tools.HashPassword(body.Password)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	user := models.User{
		UID:          uid,
		Email:        body.Email,
		Name:         body.Name,
		Role:         body.Role,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"user": user})
}

// PATCH /admin/users/:uid (admin)
func UpdateAdminUser(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		RespondError(c, "uid é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body UpdateUserBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var user models.User
	if err := db.Where("uid = ?", uid).First(&user).Error; err != nil {
		RespondError(c, "usuário não encontrado", http.StatusNotFound)
		return
	}

	if body.Role != "" {
		if !models.ValidRole(body.Role) {
			RespondError(c, "role inválido", http.StatusBadRequest)
			return
		}
		if identity != nil {
			if err := identity.SetRole(c.Request.Context(), uid, body.Role); err != nil {
				RespondError(c, "falha ao definir papel no provedor: "+err.Error(), http.StatusBadGateway)
				return
			}
		}
		user.Role = body.Role
	}
	if body.Name != "" {
		user.Name = body.Name
	}

	if err := db.Save(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"user": user})
}

// DELETE /admin/users/:uid (admin)
func DeleteAdminUser(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		RespondError(c, "uid é obrigatório", http.StatusBadRequest)
		return
	}

	user, ok := GetUserLogged(c)
	if ok && user.UID == uid {
		RespondError(c, "não é possível excluir a própria conta", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var target models.User
	if err := db.Where("uid = ?", uid).First(&target).Error; err != nil {
		RespondError(c, "usuário não encontrado", http.StatusNotFound)
		return
	}

	if identity != nil {
		if err := identity.DeleteAccount(c.Request.Context(), uid); err != nil {
			RespondError(c, "falha ao remover conta no provedor: "+err.Error(), http.StatusBadGateway)
			return
		}
	}

	if err := db.Delete(&models.User{}, "uid = ?", uid).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}
