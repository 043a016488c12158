package controllers

import (
	"net/http"
	"time"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// GET /returns/my?technicianUid=|technicianEmail=
// Peças retiradas com retorno obrigatório e ainda não devolvidas.
func GetMyReturns(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	uid := c.Query("technicianUid")
	email := c.Query("technicianEmail")
	if uid == "" && email == "" {
		RespondError(c, "technicianUid ou technicianEmail é obrigatório", http.StatusBadRequest)
		return
	}

	q := db.Model(&models.ReconItem{}).
		Select("recon_items.*").
		Where("recon_items.handover_at IS NULL")
	if uid != "" {
		q = q.Where("recon_items.technician_uid = ?", uid)
	} else {
		q = q.Where("recon_items.technician_email = ?", email)
	}

	// só itens cujo pedido já foi retirado: antes disso a peça nem está
	// com o técnico
	q = q.Joins("JOIN separation_requests ON separation_requests.id = recon_items.request_id").
		Where("separation_requests.status = ?", models.REQUEST_STATUS_PICKED_UP)

	var items []models.ReconItem
	if err := q.Order("recon_items.id desc").Find(&items).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	attachReconParts(db, items)
	RespondSuccess(c, gin.H{"items": items})
}

// POST /returns/:id/hand-over
// Registra a devolução física da peça pelo técnico. Idempotência: o UPDATE é
// condicionado a handover_at nulo, devolução duplicada vira conflito.
func HandOverReturn(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body TechnicianBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if body.TechnicianUID == "" && body.TechnicianEmail == "" {
		RespondError(c, "technicianUid ou technicianEmail é obrigatório", http.StatusBadRequest)
		return
	}

	var item models.ReconItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	owns := (body.TechnicianUID != "" && item.TechnicianUID == body.TechnicianUID) ||
		(body.TechnicianEmail != "" && item.TechnicianEmail == body.TechnicianEmail)
	if !owns {
		RespondError(c, "item não pertence ao técnico", http.StatusForbidden)
		return
	}

	// a devolução pressupõe a retirada: sem pickup-confirm a peça nem saiu
	// do estoque central
	var req models.SeparationRequest
	if err := db.First(&req, item.RequestID).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}
	if req.Status != models.REQUEST_STATUS_PICKED_UP {
		RespondError(c, "peça ainda não foi retirada", http.StatusConflict)
		return
	}

	now := time.Now()
	res := db.Model(&models.ReconItem{}).
		Where("id = ? AND handover_at IS NULL", id).
		Update("handover_at", &now)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	removeFromCarro(db, item)

	notify(db, models.NOTIF_CHANNEL_ADMIN,
		"Peça devolvida",
		"Um técnico devolveu uma peça; aguardando confirmação de recebimento.",
		models.NOTIF_TYPE_RECON,
		map[string]any{"reconItemId": item.ID, "requestId": item.RequestID})

	RespondSuccess(c, gin.H{"handover_at": now})
}

// removeFromCarro debita a devolução do estoque do carro (melhor esforço:
// se o técnico cadastrou o item manualmente com outro código, não há o que
// debitar).
func removeFromCarro(db *gorm.DB, item models.ReconItem) {
	var peca models.Peca
	if err := db.First(&peca, item.PecaID).Error; err != nil {
		return
	}

	ownerUID := item.TechnicianUID
	if ownerUID == "" {
		ownerUID = item.TechnicianEmail
	}

	db.Model(&models.CarroItem{}).
		Where("owner_uid = ? AND codigo = ? AND quantidade >= ?", ownerUID, peca.Codigo, item.Qty).
		Update("quantidade", gorm.Expr("quantidade - ?", item.Qty))
}
