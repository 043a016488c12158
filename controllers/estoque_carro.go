package controllers

import (
	"net/http"

	dbpkg "pecas/db"
	"pecas/models"
	"pecas/tools"

	"github.com/gin-gonic/gin"
)

// GET /estoque-carro?ownerUid=
// Admin vê qualquer carro; técnico só o próprio.
func GetEstoqueCarro(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	ownerUID := c.Query("ownerUid")
	if ownerUID == "" {
		ownerUID = user.UID
	}
	if !user.IsAdmin() && ownerUID != user.UID {
		RespondError(c, "sem acesso ao estoque de outro técnico", http.StatusForbidden)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var items []models.CarroItem
	if err := db.Where("owner_uid = ?", ownerUID).Order("nome asc").Find(&items).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"items": items})
}

// POST /estoque-carro
// Criação manual de item no carro (JSON, sem imagem).
func CreateCarroItem(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var item models.CarroItem
	if err := c.Bind(&item); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	missing := item.MissingFields()
	if missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}
	if !user.IsAdmin() && item.OwnerUID != user.UID {
		RespondError(c, "sem acesso ao estoque de outro técnico", http.StatusForbidden)
		return
	}
	if item.Quantidade < 0 {
		RespondError(c, "quantidade não pode ser negativa", http.StatusBadRequest)
		return
	}

	if err := db.Create(&item).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"item": item})
}

// PUT /estoque-carro/:id
// Atualiza a imagem (multipart, campo "imagem") e/ou campos do item.
func UpdateCarroItem(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var item models.CarroItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, "item não encontrado", http.StatusNotFound)
		return
	}
	if !user.IsAdmin() && item.OwnerUID != user.UID {
		RespondError(c, "sem acesso ao estoque de outro técnico", http.StatusForbidden)
		return
	}

	if file, err := c.FormFile("imagem"); err == nil && file != nil {
		url, err := tools.SaveImageUpload(c, file, conf.UploadsDir)
		if err != nil {
			RespondError(c, "falha ao salvar imagem", http.StatusBadRequest)
			return
		}
		item.ImagemURL = url
	}

	var body models.CarroItem
	if err := c.Bind(&body); err == nil {
		if body.Nome != "" {
			item.Nome = body.Nome
		}
		if body.Marca != "" {
			item.Marca = body.Marca
		}
		if body.Modelo != "" {
			item.Modelo = body.Modelo
		}
		if body.Quantidade > 0 {
			item.Quantidade = body.Quantidade
		}
	}

	if err := db.Save(&item).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"item": item})
}
