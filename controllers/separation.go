package controllers

import (
	"net/http"
	"time"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type CreateRequestBody struct {
	PecaID          int64  `json:"pecaId" form:"pecaId"`
	Qty             int64  `json:"qty" form:"qty"`
	TechnicianUID   string `json:"technicianUid" form:"technicianUid"`
	TechnicianEmail string `json:"technicianEmail" form:"technicianEmail"`
}

type ApproveBody struct {
	ApprovedBy string `json:"approvedBy" form:"approvedBy"`
	MustReturn bool   `json:"mustReturn" form:"mustReturn"`
}

type RejectBody struct {
	RejectedBy string `json:"rejectedBy" form:"rejectedBy"`
}

type TechnicianBody struct {
	TechnicianUID   string `json:"technicianUid" form:"technicianUid"`
	TechnicianEmail string `json:"technicianEmail" form:"technicianEmail"`
}

// attachParts preenche o campo Part das solicitações em lote.
func attachParts(db *gorm.DB, reqs []models.SeparationRequest) {
	if len(reqs) == 0 {
		return
	}
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.PecaID)
	}
	var pecas []models.Peca
	if err := db.Where("id IN (?)", ids).Find(&pecas).Error; err != nil {
		return
	}
	byID := make(map[int64]*models.Peca, len(pecas))
	for i := range pecas {
		byID[pecas[i].ID] = &pecas[i]
	}
	for i := range reqs {
		reqs[i].Part = byID[reqs[i].PecaID]
	}
}

// POST /separation-requests
// Cria o pedido e RESERVA o estoque imediatamente: o decremento é atômico e
// condicionado a quantidade suficiente; rejeição devolve a reserva.
func CreateSeparationRequest(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body CreateRequestBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if body.PecaID <= 0 {
		RespondError(c, "pecaId é obrigatório", http.StatusBadRequest)
		return
	}
	if body.Qty <= 0 {
		RespondError(c, "qty deve ser maior que zero", http.StatusBadRequest)
		return
	}
	if body.TechnicianUID == "" && body.TechnicianEmail == "" {
		RespondError(c, "technicianUid ou technicianEmail é obrigatório", http.StatusBadRequest)
		return
	}

	var peca models.Peca
	if err := db.First(&peca, body.PecaID).Error; err != nil {
		RespondError(c, "peça não encontrada", http.StatusNotFound)
		return
	}

	// reserva atômica: só decrementa se houver saldo
	res := db.Model(&models.Peca{}).
		Where("id = ? AND quantidade >= ?", body.PecaID, body.Qty).
		Update("quantidade", gorm.Expr("quantidade - ?", body.Qty))
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ESTOQUE_INSUFICIENTE, http.StatusConflict)
		return
	}

	req := models.SeparationRequest{
		PecaID:          body.PecaID,
		Qty:             body.Qty,
		TechnicianUID:   body.TechnicianUID,
		TechnicianEmail: body.TechnicianEmail,
		Status:          models.REQUEST_STATUS_PENDING,
	}
	if err := db.Create(&req).Error; err != nil {
		// devolve a reserva se o insert falhar
		db.Model(&models.Peca{}).Where("id = ?", body.PecaID).
			Update("quantidade", gorm.Expr("quantidade + ?", body.Qty))
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	notify(db, models.NOTIF_CHANNEL_ADMIN,
		"Nova solicitação de peça",
		peca.Nome+" (cód. "+peca.Codigo+") solicitada pelo técnico.",
		models.NOTIF_TYPE_REQUEST,
		map[string]any{"requestId": req.ID, "pecaId": peca.ID, "qty": req.Qty})

	req.Part = &peca
	RespondSuccess(c, gin.H{"request": req})
}

// GET /separation-requests?status= (admin)
func GetSeparationRequests(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	q := db.Model(&models.SeparationRequest{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []models.SeparationRequest
	if err := q.Order("created_at asc, id asc").Find(&reqs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	attachParts(db, reqs)
	RespondSuccess(c, gin.H{"requests": reqs})
}

// GET /separation-requests/my?status=&technicianUid=|technicianEmail=
func GetMySeparationRequests(c *gin.Context) {
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

	q := db.Model(&models.SeparationRequest{})
	if uid != "" {
		q = q.Where("technician_uid = ?", uid)
	} else {
		q = q.Where("technician_email = ?", email)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []models.SeparationRequest
	if err := q.Order("id desc").Find(&reqs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	attachParts(db, reqs)
	RespondSuccess(c, gin.H{"requests": reqs})
}

// POST /separation-requests/:id/approve (admin)
// pending -> ready_for_pickup. Com mustReturn=true o item de recon já nasce
// aqui (pendente de devolução). Corridas entre admins: o primeiro UPDATE
// condicional vence, o perdedor recebe ALREADY_PROCESSED.
func ApproveSeparationRequest(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body ApproveBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.SeparationRequest
	if err := db.First(&req, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	mustReturn := 0
	if body.MustReturn {
		mustReturn = 1
	}

	res := db.Model(&models.SeparationRequest{}).
		Where("id = ? AND status = ?", id, models.REQUEST_STATUS_PENDING).
		Updates(map[string]any{
			"status":      models.REQUEST_STATUS_READY,
			"must_return": mustReturn,
			"approved_by": body.ApprovedBy,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	if body.MustReturn {
		recon := models.ReconItem{
			RequestID:       req.ID,
			PecaID:          req.PecaID,
			Qty:             req.Qty,
			MustReturn:      1,
			TechnicianUID:   req.TechnicianUID,
			TechnicianEmail: req.TechnicianEmail,
			ReconStatus:     models.RECON_STATUS_PENDING,
		}
		if err := db.Create(&recon).Error; err != nil {
			// aprovação já valeu; o item de recon faltante aparece no log
			RespondError(c, "aprovado, mas falhou ao criar item de recon: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	title := "Peça pronta para retirada"
	if body.MustReturn {
		title = "Peça aprovada (com retorno)"
	}
	notifyTechnician(db, req.TechnicianUID, req.TechnicianEmail,
		title, "Sua solicitação foi aprovada.",
		models.NOTIF_TYPE_REQUEST,
		map[string]any{"requestId": req.ID, "mustReturn": body.MustReturn})

	RespondSuccess(c, gin.H{"status": models.REQUEST_STATUS_READY, "must_return": body.MustReturn})
}

// POST /separation-requests/:id/reject (admin)
// pending -> rejected, devolvendo a reserva ao estoque central.
func RejectSeparationRequest(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body RejectBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.SeparationRequest
	if err := db.First(&req, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	res := db.Model(&models.SeparationRequest{}).
		Where("id = ? AND status = ?", id, models.REQUEST_STATUS_PENDING).
		Updates(map[string]any{
			"status":      models.REQUEST_STATUS_REJECTED,
			"rejected_by": body.RejectedBy,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	// devolve a reserva
	db.Model(&models.Peca{}).Where("id = ?", req.PecaID).
		Update("quantidade", gorm.Expr("quantidade + ?", req.Qty))

	notifyTechnician(db, req.TechnicianUID, req.TechnicianEmail,
		"Solicitação rejeitada", "Sua solicitação foi rejeitada e o estoque restaurado.",
		models.NOTIF_TYPE_REQUEST,
		map[string]any{"requestId": req.ID})

	RespondSuccess(c, gin.H{"status": models.REQUEST_STATUS_REJECTED})
}

// POST /separation-requests/:id/pickup-confirm
// ready_for_pickup -> picked_up, somando a quantidade ao estoque do carro do
// técnico dono do pedido.
func PickupConfirm(c *gin.Context) {
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

	var req models.SeparationRequest
	if err := db.First(&req, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}
	if !req.Owns(body.TechnicianUID, body.TechnicianEmail) {
		RespondError(c, "pedido não pertence ao técnico", http.StatusForbidden)
		return
	}

	now := time.Now()
	res := db.Model(&models.SeparationRequest{}).
		Where("id = ? AND status = ?", id, models.REQUEST_STATUS_READY).
		Updates(map[string]any{
			"status":       models.REQUEST_STATUS_PICKED_UP,
			"picked_up_at": &now,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	addToCarro(db, req)

	RespondSuccess(c, gin.H{"status": models.REQUEST_STATUS_PICKED_UP})
}

// addToCarro soma a retirada ao estoque do carro, criando o item se preciso.
func addToCarro(db *gorm.DB, req models.SeparationRequest) {
	var peca models.Peca
	if err := db.First(&peca, req.PecaID).Error; err != nil {
		return
	}

	ownerUID := req.TechnicianUID
	if ownerUID == "" {
		ownerUID = req.TechnicianEmail
	}

	var item models.CarroItem
	err := db.Where("owner_uid = ? AND codigo = ?", ownerUID, peca.Codigo).First(&item).Error
	if err != nil {
		item = models.CarroItem{
			OwnerUID:   ownerUID,
			OwnerEmail: req.TechnicianEmail,
			Nome:       peca.Nome,
			Marca:      peca.Marca,
			Modelo:     peca.Modelo,
			Codigo:     peca.Codigo,
			Quantidade: req.Qty,
			ImagemURL:  peca.ImagemURL,
		}
		db.Create(&item)
		return
	}
	db.Model(&models.CarroItem{}).Where("id = ?", item.ID).
		Update("quantidade", gorm.Expr("quantidade + ?", req.Qty))
}
