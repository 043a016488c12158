package controllers

import (
	"net/http"
	"time"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type ReconNotesBody struct {
	Notes string `json:"notes" form:"notes"`
}

type ReconDiscardBody struct {
	Reason string `json:"reason" form:"reason"`
}

func attachReconParts(db *gorm.DB, items []models.ReconItem) {
	if len(items) == 0 {
		return
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PecaID)
	}
	var pecas []models.Peca
	if err := db.Where("id IN (?)", ids).Find(&pecas).Error; err != nil {
		return
	}
	byID := make(map[int64]*models.Peca, len(pecas))
	for i := range pecas {
		byID[pecas[i].ID] = &pecas[i]
	}
	for i := range items {
		items[i].Part = byID[items[i].PecaID]
	}
}

// GET /recon-items?status= (admin)
// Sem filtro devolve a fila "aguardando análise": itens já devolvidos pelo
// técnico e ainda não finalizados.
func GetReconItems(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	q := db.Model(&models.ReconItem{})
	if status := c.Query("status"); status != "" {
		q = q.Where("recon_status = ?", status)
	} else {
		q = q.Where("handover_at IS NOT NULL AND recon_status IN (?)",
			[]string{models.RECON_STATUS_PENDING, models.RECON_STATUS_RECEIVED})
	}

	var items []models.ReconItem
	if err := q.Order("handover_at asc, id asc").Find(&items).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	attachReconParts(db, items)
	RespondSuccess(c, gin.H{"items": items})
}

// GET /recon-history?status=&lastDays=|from=&to= (admin)
func GetReconHistory(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	q := db.Model(&models.ReconItem{})
	if status := c.Query("status"); status != "" {
		q = q.Where("recon_status = ?", status)
	}

	if lastDays := queryInt(c, "lastDays", 0); lastDays > 0 {
		since := time.Now().AddDate(0, 0, -lastDays)
		q = q.Where("created_at >= ?", since)
	} else {
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				RespondError(c, "from inválido (use AAAA-MM-DD)", http.StatusBadRequest)
				return
			}
			q = q.Where("created_at >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				RespondError(c, "to inválido (use AAAA-MM-DD)", http.StatusBadRequest)
				return
			}
			// inclusivo até o fim do dia
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var items []models.ReconItem
	if err := q.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	attachReconParts(db, items)
	RespondSuccess(c, gin.H{"items": items})
}

// POST /recon-items/:id/confirm-receipt (admin)
// Só vale depois que o técnico registrou a devolução; antes disso devolve
// HANDOVER_PENDING, que o app traduz para uma mensagem específica.
func ConfirmReconReceipt(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body ReconNotesBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var item models.ReconItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}
	if item.HandoverAt == nil {
		RespondError(c, ERR_HANDOVER_PENDING, http.StatusConflict)
		return
	}

	now := time.Now()
	updates := map[string]any{
		"recon_status": models.RECON_STATUS_RECEIVED,
		"received_at":  &now,
	}
	if body.Notes != "" {
		updates["notes"] = body.Notes
	}

	res := db.Model(&models.ReconItem{}).
		Where("id = ? AND recon_status = ?", id, models.RECON_STATUS_PENDING).
		Updates(updates)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	RespondSuccess(c, gin.H{"recon_status": models.RECON_STATUS_RECEIVED})
}

// POST /recon-items/:id/restore (admin)
// received -> restored, devolvendo a quantidade ao estoque central.
func RestoreReconItem(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body ReconNotesBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var item models.ReconItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	now := time.Now()
	updates := map[string]any{
		"recon_status": models.RECON_STATUS_RESTORED,
		"processed_at": &now,
	}
	if body.Notes != "" {
		updates["notes"] = body.Notes
	}

	res := db.Model(&models.ReconItem{}).
		Where("id = ? AND recon_status = ?", id, models.RECON_STATUS_RECEIVED).
		Updates(updates)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	// retorno ao estoque central
	db.Model(&models.Peca{}).Where("id = ?", item.PecaID).
		Update("quantidade", gorm.Expr("quantidade + ?", item.Qty))

	notifyTechnician(db, item.TechnicianUID, item.TechnicianEmail,
		"Peça restaurada", "A peça devolvida voltou ao estoque central.",
		models.NOTIF_TYPE_RECON,
		map[string]any{"reconItemId": item.ID})

	RespondSuccess(c, gin.H{"recon_status": models.RECON_STATUS_RESTORED})
}

// POST /recon-items/:id/discard (admin)
// received -> discarded, sem retorno de estoque.
func DiscardReconItem(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body ReconDiscardBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var item models.ReconItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	now := time.Now()
	res := db.Model(&models.ReconItem{}).
		Where("id = ? AND recon_status = ?", id, models.RECON_STATUS_RECEIVED).
		Updates(map[string]any{
			"recon_status": models.RECON_STATUS_DISCARDED,
			"processed_at": &now,
			"reason":       body.Reason,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	notifyTechnician(db, item.TechnicianUID, item.TechnicianEmail,
		"Peça descartada", "A peça devolvida foi descartada na análise.",
		models.NOTIF_TYPE_RECON,
		map[string]any{"reconItemId": item.ID})

	RespondSuccess(c, gin.H{"recon_status": models.RECON_STATUS_DISCARDED})
}

// POST /recon-items/:id/notes (admin)
// Anotação livre, independente de status; atualiza o item no lugar.
func SaveReconNotes(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body ReconNotesBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var item models.ReconItem
	if err := db.First(&item, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	if err := db.Model(&models.ReconItem{}).Where("id = ?", id).
		Update("notes", body.Notes).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	item.Notes = body.Notes
	RespondSuccess(c, gin.H{"item": item})
}
