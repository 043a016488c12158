package controllers

import (
	"net/http"

	dbpkg "pecas/db"
	"pecas/models"
	"pecas/tools"

	"github.com/gin-gonic/gin"
)

// UpdatePecaBody usa ponteiros nos numéricos para distinguir "não enviado"
// de zero: o admin precisa conseguir zerar estoque e mínimos.
type UpdatePecaBody struct {
	Nome       string `json:"nome" form:"nome"`
	Marca      string `json:"marca" form:"marca"`
	Modelo     string `json:"modelo" form:"modelo"`
	Codigo     string `json:"codigo" form:"codigo"`
	Quantidade *int64 `json:"quantidade" form:"quantidade"`
	EstoqueMin *int64 `json:"estoqueMin" form:"estoqueMin"`
	EstoqueMax *int64 `json:"estoqueMax" form:"estoqueMax"`
}

// GET /pecas
func GetPecas(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var pecas []models.Peca
	if err := db.Order("nome asc").Find(&pecas).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"pecas": pecas})
}

// POST /pecas (admin)
// Aceita multipart (campos + imagem no campo "imagem") ou JSON puro.
func CreatePeca(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var peca models.Peca
	if err := c.Bind(&peca); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	missing := peca.MissingFields()
	if missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}
	if peca.Quantidade < 0 || peca.EstoqueMin < 0 || peca.EstoqueMax < 0 {
		RespondError(c, "quantidades não podem ser negativas", http.StatusBadRequest)
		return
	}

	var existing models.Peca
	if err := db.Where("codigo = ?", peca.Codigo).First(&existing).Error; err == nil {
		RespondError(c, "já existe peça com este código", http.StatusConflict)
		return
	}

	if file, err := c.FormFile("imagem"); err == nil && file != nil {
		url, err := tools.SaveImageUpload(c, file, conf.UploadsDir)
		if err != nil {
			RespondError(c, "falha ao salvar imagem", http.StatusBadRequest)
			return
		}
		peca.ImagemURL = url
	}

	if err := db.Create(&peca).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"peca": peca})
}

// PUT /pecas/:id (admin)
// Atualiza campos e/ou a imagem (multipart campo "imagem").
func UpdatePeca(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var peca models.Peca
	if err := db.First(&peca, id).Error; err != nil {
		RespondError(c, "peça não encontrada", http.StatusNotFound)
		return
	}

	if file, err := c.FormFile("imagem"); err == nil && file != nil {
		url, err := tools.SaveImageUpload(c, file, conf.UploadsDir)
		if err != nil {
			RespondError(c, "falha ao salvar imagem", http.StatusBadRequest)
			return
		}
		peca.ImagemURL = url
	}

	var body UpdatePecaBody
	if err := c.Bind(&body); err == nil {
		if body.Nome != "" {
			peca.Nome = body.Nome
		}
		if body.Marca != "" {
			peca.Marca = body.Marca
		}
		if body.Modelo != "" {
			peca.Modelo = body.Modelo
		}
		if body.Codigo != "" && body.Codigo != peca.Codigo {
			var other models.Peca
			if err := db.Where("codigo = ? AND id <> ?", body.Codigo, peca.ID).First(&other).Error; err == nil {
				RespondError(c, "já existe peça com este código", http.StatusConflict)
				return
			}
			peca.Codigo = body.Codigo
		}
		// quantidade só muda por aqui em ajustes manuais do admin
		if body.Quantidade != nil && *body.Quantidade >= 0 {
			peca.Quantidade = *body.Quantidade
		}
		if body.EstoqueMin != nil && *body.EstoqueMin >= 0 {
			peca.EstoqueMin = *body.EstoqueMin
		}
		if body.EstoqueMax != nil && *body.EstoqueMax >= 0 {
			peca.EstoqueMax = *body.EstoqueMax
		}
	}

	if err := db.Save(&peca).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"peca": peca})
}

// DELETE /pecas/:id (admin)
func DeletePeca(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var pending int
	db.Model(&models.SeparationRequest{}).
		Where("peca_id = ? AND status IN (?)", id, []string{models.REQUEST_STATUS_PENDING, models.REQUEST_STATUS_READY}).
		Count(&pending)
	if pending > 0 {
		RespondError(c, "peça possui solicitações em aberto", http.StatusConflict)
		return
	}

	if err := db.Delete(&models.Peca{}, "id = ?", id).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
